package memory

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameCollator ordena nombres en español sin distinguir mayúsculas.
// collate.Collator no es seguro para uso concurrente: uno por llamada.
func nameCollator() *collate.Collator {
	return collate.New(language.Spanish, collate.IgnoreCase)
}
