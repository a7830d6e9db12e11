package domain

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatMoney renders m the way the storefront shows prices, e.g. "Rp 450.000".
func FormatMoney(m Money) string {
	if m.Currency == "" || m.Currency == "IDR" {
		return idPrinter.Sprintf("Rp %d", m.Amount)
	}
	return idPrinter.Sprintf("%s %d", m.Currency, m.Amount)
}

// OrderMessage is the plain-text order sent to the shop over WhatsApp.
func OrderMessage(shop string, c Customer, q Quote) string {
	method := "Ambil di Toko"
	if c.DeliveryMethod == DeliveryCourier {
		method = "Antar ke Alamat"
	}

	lines := []string{
		fmt.Sprintf("*Halo Toko %s!*", shop),
		"",
		"Saya ingin melakukan pemesanan dengan detail berikut:",
		"Nama: " + c.Name,
		"Nomor: " + c.Phone,
		"Metode Pengiriman: " + method,
	}
	if c.DeliveryMethod == DeliveryCourier && c.Address != "" {
		lines = append(lines, "Alamat: "+c.Address)
	}

	lines = append(lines, "", "*Pesanan:*")
	for i, ln := range q.Lines {
		name := ln.Name
		if v := variantLabel(ln.Size, ln.Color); v != "" {
			name += " (" + v + ")"
		}
		lines = append(lines, fmt.Sprintf("%d. %s x%d - %s (Total %s)",
			i+1, name, ln.Quantity, FormatMoney(ln.UnitPrice), FormatMoney(ln.LineTotal)))
	}

	lines = append(lines, "", fmt.Sprintf("Total Pembayaran: *%s*", FormatMoney(q.Total)))
	if c.Notes != "" {
		lines = append(lines, "", "Catatan: "+c.Notes)
	}
	lines = append(lines, "", "Mohon konfirmasi ketersediaan dan detail pembayaran ya. Terima kasih!")

	return strings.Join(lines, "\n")
}

// EscapeMessage percent-encodes text for a query parameter, spaces as %20.
func EscapeMessage(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// WhatsAppURL builds a wa.me link, or "" when no shop number is configured.
func WhatsAppURL(phone, escaped string) string {
	if phone == "" {
		return ""
	}
	return "https://wa.me/" + phone + "?text=" + escaped
}

func variantLabel(size, color string) string {
	switch {
	case size != "" && color != "":
		return size + ", " + color
	case size != "":
		return size
	default:
		return color
	}
}
