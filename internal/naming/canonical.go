package naming

// Pair holds the canonical filenames of one entry in both languages.
type Pair struct {
	EN string `json:"en"`
	VI string `json:"vi"`
}

// For returns the filename for lang.
func (p Pair) For(lang Language) string {
	switch lang {
	case LangEN:
		return p.EN
	case LangVI:
		return p.VI
	default:
		return ""
	}
}

// CanonicalFilename builds {room}-{slug}-{lang}.mp3 from raw inputs.
func CanonicalFilename(roomID, entrySlug string, lang Language) string {
	return NormalizeRoomID(roomID) + "-" + NormalizeEntrySlug(entrySlug) + "-" + string(lang) + ".mp3"
}

// CanonicalPair returns both language variants for an entry slug.
func CanonicalPair(roomID, entrySlug string) Pair {
	return Pair{
		EN: CanonicalFilename(roomID, entrySlug, LangEN),
		VI: CanonicalFilename(roomID, entrySlug, LangVI),
	}
}
