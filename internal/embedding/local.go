package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// LocalDim is the width of the hashed bag-of-words vectors
const LocalDim = 4096

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "i": true, "im": true, "me": true, "my": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "for": true, "with": true, "some": true,
	"want": true, "would": true, "like": true, "get": true, "go": true, "do": true, "is": true, "are": true,
	"be": true, "it": true, "this": true, "that": true, "or": true, "can": true, "just": true, "please": true,
	"s": true, "t": true,
}

// Local is an offline embedder: a hashed bag of normalized word tokens.
// It captures lexical overlap only, which is enough for anchor matching and
// keeps the engine usable without a model provider.
type Local struct {
	dim int
}

// NewLocal creates a hashed embedder with LocalDim buckets
func NewLocal() *Local {
	return &Local{dim: LocalDim}
}

func (l *Local) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = l.vector(t)
	}
	return out, nil
}

func (l *Local) vector(text string) []float32 {
	vec := make([]float32, l.dim)
	for _, tok := range Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%uint32(l.dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

// Tokenize lower-cases text, splits on non-letters, drops stopwords and
// strips simple plurals.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		out = append(out, stem(f))
	}
	return out
}

func stem(w string) string {
	if len(w) > 4 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}
