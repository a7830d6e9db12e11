package memory

import "github.com/dwikikusuma/storefront-cart/internal/catalog/domain"

// Tampah is the catering storefront's standing menu, priced in rupiah.
func Tampah() []domain.Product {
	idr := func(amount int64) domain.Money { return domain.Money{Currency: "IDR", Amount: amount} }
	return []domain.Product{
		{
			ID:          "tampah-premium",
			Handle:      "tampah-premium",
			Name:        "Tampah Premium Nusantara",
			Category:    "Tampah",
			Description: "Pilihan kue tradisional lengkap dengan tampilan cantik untuk acara spesial keluarga.",
			Price:       idr(450000),
		},
		{
			ID:          "jajan-pasar",
			Handle:      "jajan-pasar",
			Name:        "Jajan Pasar Komplit",
			Category:    "Jajanan Pasar",
			Description: "Aneka jajan pasar klasik seperti lapis legit, lemper, dadar gulung, dan nagasari.",
			Price:       idr(225000),
		},
		{
			ID:          "snack-box",
			Handle:      "snack-box",
			Name:        "Snack Box Korporat",
			Category:    "Snack Box",
			Description: "Kombinasi kue asin dan manis untuk rapat kantor atau seminar seharian.",
			Price:       idr(35000),
		},
		{
			ID:          "tumpeng-mini",
			Handle:      "tumpeng-mini",
			Name:        "Tumpeng Mini Celebration",
			Category:    "Tumpeng",
			Description: "Nasi kuning mini lengkap lauk pendamping, cocok sebagai hantaran syukuran.",
			Price:       idr(55000),
		},
		{
			ID:          "klepon",
			Handle:      "klepon",
			Name:        "Klepon Gula Aren",
			Category:    "Tradisional",
			Description: "Klepon kenyal isi gula aren cair, disajikan dengan kelapa parut yang gurih.",
			Price:       idr(28000),
		},
		{
			ID:          "kue-kering",
			Handle:      "kue-kering",
			Name:        "Kue Kering Signature",
			Category:    "Kue Kering",
			Description: "Toples kue kering premium seperti nastar, kastengel, dan putri salju.",
			Price:       idr(180000),
		},
	}
}
