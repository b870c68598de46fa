package core

// LinkQuality is a coarse, human-readable classification of link
// quality derived from the SNR.
type LinkQuality string

const (
	LinkQualityDown      LinkQuality = "down"
	LinkQualityPoor      LinkQuality = "poor"
	LinkQualityFair      LinkQuality = "fair"
	LinkQualityGood      LinkQuality = "good"
	LinkQualityExcellent LinkQuality = "excellent"
)

// ClassifySNR buckets an SNR in dB into a LinkQuality.
func ClassifySNR(snrDB float64) LinkQuality {
	switch {
	case snrDB < 0:
		return LinkQualityDown
	case snrDB < 5:
		return LinkQualityPoor
	case snrDB < 10:
		return LinkQualityFair
	case snrDB < 20:
		return LinkQualityGood
	default:
		return LinkQualityExcellent
	}
}

// IsUsable reports whether the link carries traffic at all.
func (q LinkQuality) IsUsable() bool { return q != LinkQualityDown && q != "" }
