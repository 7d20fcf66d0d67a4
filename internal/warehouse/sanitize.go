package warehouse

import "strings"

// SafeText returns s as valid UTF-8 without NUL bytes, which PostgreSQL
// rejects in text columns. Invalid sequences are dropped.
func SafeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return s
}

// Sanitize applies SafeText to every text column of every table.
func (s *Schema) Sanitize() {
	for i := range s.Times {
		s.Times[i].DayOfWeek = SafeText(s.Times[i].DayOfWeek)
	}
	for i := range s.Users {
		s.Users[i].User = SafeText(s.Users[i].User)
	}
	for i := range s.Sentiments {
		s.Sentiments[i].Label = SafeText(s.Sentiments[i].Label)
		s.Sentiments[i].Category = SafeText(s.Sentiments[i].Category)
	}
	for i := range s.Keywords {
		s.Keywords[i].Keyword = SafeText(s.Keywords[i].Keyword)
	}
	for i := range s.Facts {
		s.Facts[i].NoteID = SafeText(s.Facts[i].NoteID)
	}
}
