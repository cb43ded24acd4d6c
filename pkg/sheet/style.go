package sheet

// Bucket is the presentation group a line is styled with.
type Bucket int

const (
	BucketDefault Bucket = iota
	BucketSection
	BucketChords
	BucketLyrics
)

// String returns a short name for the bucket.
func (b Bucket) String() string {
	switch b {
	case BucketSection:
		return "section"
	case BucketChords:
		return "chords"
	case BucketLyrics:
		return "lyrics"
	default:
		return "default"
	}
}

// StyleFor maps a line kind to its presentation bucket. Unknown kinds map to
// BucketDefault.
func StyleFor(kind LineKind) Bucket {
	switch kind {
	case KindSection:
		return BucketSection
	case KindChords:
		return BucketChords
	case KindLyrics:
		return BucketLyrics
	default:
		return BucketDefault
	}
}
