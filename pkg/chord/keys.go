package chord

// Unset is the key indicator value when no key has been chosen.
const Unset = "-"

// Keys lists the musical keys offered by the key indicator.
var Keys = []string{
	"C", "C#", "Db", "D", "D#", "Eb", "E", "F", "F#", "Gb", "G", "G#", "Ab", "A", "A#", "Bb", "B",
	"Cm", "C#m", "Dm", "D#m", "Ebm", "Em", "Fm", "F#m", "Gm", "G#m", "Abm", "Am", "A#m", "Bbm", "Bm",
}

// IsKey reports whether k is a known key or Unset.
func IsKey(k string) bool {
	if k == Unset {
		return true
	}
	for _, key := range Keys {
		if key == k {
			return true
		}
	}
	return false
}
