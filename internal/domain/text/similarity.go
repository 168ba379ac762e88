package text

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// shortTextLimit is the character length below which subject comparison falls
// back to token overlap. TF-IDF over a two-document corpus is unstable for
// very short strings.
const shortTextLimit = 50

// tfidfTokenRe matches words of two or more characters for TF-IDF
// vectorization. Accented letters count as word characters.
var tfidfTokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// maxFeatures caps the vocabulary used for TF-IDF, keeping the most frequent
// terms across both documents.
const maxFeatures = 100

// Similarity scores how alike two Spanish subject texts are, in [0, 1].
// Empty inputs score 0. When either text is shorter than 50 characters the
// score is the Jaccard index over whitespace-separated tokens; otherwise it
// is the cosine similarity of TF-IDF vectors built over unigrams and bigrams
// with Spanish stopwords removed.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	al, bl := strings.ToLower(a), strings.ToLower(b)
	if utf8.RuneCountInString(al) < shortTextLimit || utf8.RuneCountInString(bl) < shortTextLimit {
		return tokenJaccard(al, bl)
	}
	if sim, ok := tfidfCosine(al, bl); ok {
		return sim
	}
	return tokenJaccard(al, bl)
}

func tokenJaccard(a, b string) float64 {
	wa := tokenSet(a)
	wb := tokenSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

// ngrams tokenizes a lowercased document into unigrams and bigrams with
// stopwords removed.
func ngrams(doc string) []string {
	words := tfidfTokenRe.FindAllString(doc, -1)
	kept := words[:0]
	for _, w := range words {
		if !IsStopword(w) {
			kept = append(kept, w)
		}
	}
	terms := make([]string, 0, 2*len(kept))
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// tfidfCosine computes the cosine similarity of the TF-IDF vectors of the two
// documents. The vocabulary is capped at the 100 most frequent terms across
// both documents. Returns ok=false when no usable vocabulary remains.
func tfidfCosine(a, b string) (float64, bool) {
	termsA := ngrams(a)
	termsB := ngrams(b)
	if len(termsA) == 0 || len(termsB) == 0 {
		return 0, false
	}

	counts := [2]map[string]float64{
		termCounts(termsA),
		termCounts(termsB),
	}

	totals := make(map[string]float64)
	for _, c := range counts {
		for t, n := range c {
			totals[t] += n
		}
	}
	vocab := make([]string, 0, len(totals))
	for t := range totals {
		vocab = append(vocab, t)
	}
	// Keep the most frequent terms, ties broken alphabetically for
	// determinism.
	sort.Slice(vocab, func(i, j int) bool {
		if totals[vocab[i]] != totals[vocab[j]] {
			return totals[vocab[i]] > totals[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if len(vocab) > maxFeatures {
		vocab = vocab[:maxFeatures]
	}

	// Smoothed inverse document frequency over the two-document corpus.
	idf := make(map[string]float64, len(vocab))
	for _, t := range vocab {
		df := 0
		for _, c := range counts {
			if c[t] > 0 {
				df++
			}
		}
		idf[t] = math.Log(float64(1+2)/float64(1+df)) + 1
	}

	var dot, normA, normB float64
	for _, t := range vocab {
		va := counts[0][t] * idf[t]
		vb := counts[1][t] * idf[t]
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

func termCounts(terms []string) map[string]float64 {
	out := make(map[string]float64, len(terms))
	for _, t := range terms {
		out[t]++
	}
	return out
}
