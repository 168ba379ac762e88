package text

// spanishStopwords lists common Spanish function words plus a few boilerplate
// terms that appear in nearly every procurement notice ("cláusula", "número")
// and therefore carry no signal for matching.
var spanishStopwords = map[string]struct{}{
	"el": {}, "la": {}, "de": {}, "y": {}, "a": {}, "en": {}, "que": {},
	"es": {}, "por": {}, "para": {}, "con": {}, "no": {}, "una": {}, "su": {},
	"al": {}, "lo": {}, "como": {}, "más": {}, "del": {}, "pero": {},
	"sus": {}, "le": {}, "ya": {}, "o": {}, "fue": {}, "este": {}, "ha": {},
	"sí": {}, "porque": {}, "esta": {}, "son": {}, "entre": {}, "está": {},
	"cuando": {}, "muy": {}, "sin": {}, "sobre": {}, "ser": {}, "tiene": {},
	"también": {}, "me": {}, "hasta": {}, "hay": {}, "donde": {}, "han": {},
	"quien": {}, "están": {}, "estado": {}, "desde": {}, "todo": {},
	"nos": {}, "durante": {}, "todos": {}, "uno": {}, "les": {}, "ni": {},
	"contra": {}, "otros": {}, "fueron": {}, "ese": {}, "eso": {},
	"había": {}, "ante": {}, "ellos": {}, "e": {}, "esto": {}, "mí": {},
	"antes": {}, "algunos": {}, "qué": {}, "unos": {}, "yo": {}, "otro": {},
	"otras": {}, "otra": {}, "él": {}, "tanto": {}, "esa": {}, "estos": {},
	"mucho": {}, "quienes": {}, "nada": {}, "muchos": {}, "cual": {},
	"sea": {}, "poco": {}, "ella": {}, "estar": {}, "haber": {},
	"estas": {}, "estaba": {}, "estamos": {}, "los": {}, "las": {},
	"un": {}, "según": {}, "cláusula": {}, "mediante": {}, "número": {},
	"previsto": {},
}

// IsStopword reports whether the lowercased word is a Spanish stopword.
func IsStopword(word string) bool {
	_, ok := spanishStopwords[word]
	return ok
}
