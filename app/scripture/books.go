package scripture

// Book pairs a book name as printed in lectionary references with its
// three-character passage code.
type Book struct {
	Name string
	Code string
}

// books is the fixed name table in canonical order. "Psalm" is kept next to
// "Psalms" because lectionary pages use the singular for responsorial psalms.
var books = []Book{
	// Old Testament
	{"Genesis", "GEN"},
	{"Exodus", "EXO"},
	{"Leviticus", "LEV"},
	{"Numbers", "NUM"},
	{"Deuteronomy", "DEU"},
	{"Joshua", "JOS"},
	{"Judges", "JDG"},
	{"Ruth", "RUT"},
	{"1 Samuel", "1SA"},
	{"2 Samuel", "2SA"},
	{"1 Kings", "1KI"},
	{"2 Kings", "2KI"},
	{"1 Chronicles", "1CH"},
	{"2 Chronicles", "2CH"},
	{"Ezra", "EZR"},
	{"Nehemiah", "NEH"},
	{"Esther", "EST"},
	{"Job", "JOB"},
	{"Psalms", "PSA"},
	{"Psalm", "PSA"},
	{"Proverbs", "PRO"},
	{"Ecclesiastes", "ECC"},
	{"Song of Solomon", "SNG"},
	{"Isaiah", "ISA"},
	{"Jeremiah", "JER"},
	{"Lamentations", "LAM"},
	{"Ezekiel", "EZK"},
	{"Daniel", "DAN"},
	{"Hosea", "HOS"},
	{"Joel", "JOL"},
	{"Amos", "AMO"},
	{"Obadiah", "OBA"},
	{"Jonah", "JON"},
	{"Micah", "MIC"},
	{"Nahum", "NAM"},
	{"Habakkuk", "HAB"},
	{"Zephaniah", "ZEP"},
	{"Haggai", "HAG"},
	{"Zechariah", "ZEC"},
	{"Malachi", "MAL"},
	// New Testament
	{"Matthew", "MAT"},
	{"Mark", "MRK"},
	{"Luke", "LUK"},
	{"John", "JHN"},
	{"Acts", "ACT"},
	{"Romans", "ROM"},
	{"1 Corinthians", "1CO"},
	{"2 Corinthians", "2CO"},
	{"Galatians", "GAL"},
	{"Ephesians", "EPH"},
	{"Philippians", "PHP"},
	{"Colossians", "COL"},
	{"1 Thessalonians", "1TH"},
	{"2 Thessalonians", "2TH"},
	{"1 Timothy", "1TI"},
	{"2 Timothy", "2TI"},
	{"Titus", "TIT"},
	{"Philemon", "PHM"},
	{"Hebrews", "HEB"},
	{"James", "JAS"},
	{"1 Peter", "1PE"},
	{"2 Peter", "2PE"},
	{"1 John", "1JN"},
	{"2 John", "2JN"},
	{"3 John", "3JN"},
	{"Jude", "JUD"},
	{"Revelation", "REV"},
}

var bookCodes = func() map[string]string {
	m := make(map[string]string, len(books))
	for _, b := range books {
		m[b.Name] = b.Code
	}
	return m
}()

// Books returns a copy of the name table.
func Books() []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

// BookCode looks up the exact, case-sensitive book name.
func BookCode(name string) (string, bool) {
	code, ok := bookCodes[name]
	return code, ok
}
