package scoring

// Grade maps a quality score to a letter.
func Grade(quality float64) string {
	switch {
	case quality >= 0.9:
		return "A"
	case quality >= 0.8:
		return "B"
	case quality >= 0.7:
		return "C"
	case quality >= 0.6:
		return "D"
	default:
		return "F"
	}
}
