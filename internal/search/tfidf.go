// Package search implements the TF-IDF lexical index used for retrieval.
package search

import (
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/gcbaptista/space-chatbot/internal/tokenizer"
	"github.com/gcbaptista/space-chatbot/model"
)

const (
	// DefaultTopK is the number of documents returned when the caller does not ask for a specific count.
	DefaultTopK = 5

	// DefaultThreshold is the minimum cosine similarity for a document to be returned.
	// TF-IDF scores on a corpus of ~20 documents are small, so the bar is low.
	DefaultThreshold = 0.01
)

// TermVector maps a term to its TF-IDF weight.
type TermVector map[string]float64

// ScoredDocument is a retrieval hit with its cosine similarity.
type ScoredDocument struct {
	Document model.Document `json:"document"`
	Score    float64        `json:"score"`
}

// IndexStats describes the built index.
type IndexStats struct {
	Ready          bool `json:"ready"`
	DocumentCount  int  `json:"document_count"`
	VocabularySize int  `json:"vocabulary_size"`
}

// Index is an in-memory TF-IDF index over a fixed document collection.
// The vocabulary, IDF table and document vectors are built once by Initialize.
type Index struct {
	mu         sync.RWMutex
	source     []model.Document
	docs       []model.Document
	vocabulary map[string]int // term -> stable index in order of first appearance
	docFreq    map[string]int
	idf        map[string]float64
	vectors    []TermVector
	norms      []float64
	ready      bool
	threshold  float64
	logger     *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithThreshold overrides the minimum similarity.
func WithThreshold(threshold float64) Option {
	return func(ix *Index) {
		ix.threshold = threshold
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) {
		ix.logger = logger
	}
}

// NewIndex creates an index over docs. The documents are not processed until Initialize is called.
func NewIndex(docs []model.Document, opts ...Option) *Index {
	ix := &Index{
		source:    append([]model.Document(nil), docs...),
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.logger = ix.logger.With(slog.String("component", "lexical_index"))
	return ix
}

// Initialize builds the vocabulary, IDF table and document vectors.
// Calling it again after a successful build is a no-op.
func (ix *Index) Initialize() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.ready {
		return nil
	}

	docs := ix.source
	vocabulary := make(map[string]int)
	docFreq := make(map[string]int)
	termFreqs := make([]map[string]int, len(docs))

	for i, doc := range docs {
		freqs := make(map[string]int)
		for _, term := range tokenizer.Tokenize(doc.Text) {
			freqs[term]++
			if _, ok := vocabulary[term]; !ok {
				vocabulary[term] = len(vocabulary)
			}
		}
		for term := range freqs {
			docFreq[term]++
		}
		termFreqs[i] = freqs
	}

	idf := make(map[string]float64, len(docFreq))
	n := float64(len(docs))
	for term, df := range docFreq {
		// IDF = ln(N / df)
		idf[term] = math.Log(n / float64(df))
	}

	vectors := make([]TermVector, len(docs))
	norms := make([]float64, len(docs))
	for i, freqs := range termFreqs {
		vec := make(TermVector, len(freqs))
		for term, freq := range freqs {
			vec[term] = float64(freq) * idf[term]
		}
		vectors[i] = vec
		norms[i] = vec.Norm()
	}

	ix.docs = docs
	ix.vocabulary = vocabulary
	ix.docFreq = docFreq
	ix.idf = idf
	ix.vectors = vectors
	ix.norms = norms
	ix.ready = true

	ix.logger.Info("Lexical index initialized",
		slog.Int("documents", len(docs)),
		slog.Int("vocabulary", len(vocabulary)))
	return nil
}

// Ready reports whether Initialize has completed.
func (ix *Index) Ready() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.ready
}

// Stats returns the document count and vocabulary size.
func (ix *Index) Stats() IndexStats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return IndexStats{
		Ready:          ix.ready,
		DocumentCount:  len(ix.docs),
		VocabularySize: len(ix.vocabulary),
	}
}

// IDF returns the inverse document frequency of term, or 0 if it is not in the vocabulary.
func (ix *Index) IDF(term string) float64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.idf[term]
}

// Retrieve returns up to topK documents ordered by descending similarity.
func (ix *Index) Retrieve(query string, topK int) []model.Document {
	hits := ix.Search(query, topK)
	docs := make([]model.Document, len(hits))
	for i, hit := range hits {
		docs[i] = hit.Document
	}
	return docs
}

// Search scores every document against query and returns the hits above the
// threshold, highest first. Equal scores keep corpus order.
func (ix *Index) Search(query string, topK int) []ScoredDocument {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.ready {
		ix.logger.Warn("Retrieve called before index initialization", slog.String("query", query))
		return []ScoredDocument{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryVec := ix.queryVector(query)
	queryNorm := queryVec.Norm()

	hits := make([]ScoredDocument, 0)
	for i, doc := range ix.docs {
		score := cosine(queryVec, queryNorm, ix.vectors[i], ix.norms[i])
		if score > ix.threshold {
			hits = append(hits, ScoredDocument{Document: doc, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// Similarity returns the cosine similarity between query and the document with docID.
func (ix *Index) Similarity(query, docID string) (float64, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.ready {
		return 0, false
	}
	queryVec := ix.queryVector(query)
	for i, doc := range ix.docs {
		if doc.ID == docID {
			return cosine(queryVec, queryVec.Norm(), ix.vectors[i], ix.norms[i]), true
		}
	}
	return 0, false
}

// queryVector weights the query terms with the corpus IDF table.
// Terms outside the vocabulary are dropped. Caller must hold the read lock.
func (ix *Index) queryVector(query string) TermVector {
	freqs := make(map[string]int)
	for _, term := range tokenizer.Tokenize(query) {
		freqs[term]++
	}

	vec := make(TermVector, len(freqs))
	for term, freq := range freqs {
		idf, ok := ix.idf[term]
		if !ok {
			continue
		}
		vec[term] = float64(freq) * idf
	}
	return vec
}

// Norm returns the Euclidean length of the vector.
func (v TermVector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of two vectors.
func (v TermVector) Dot(other TermVector) float64 {
	small, large := v, other
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for term, w := range small {
		dot += w * large[term]
	}
	return dot
}

// CosineSimilarity returns dot(a,b) / (|a| * |b|), or 0 when either norm is 0.
func CosineSimilarity(a, b TermVector) float64 {
	return cosine(a, a.Norm(), b, b.Norm())
}

func cosine(a TermVector, normA float64, b TermVector, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := a.Dot(b) / (normA * normB)
	// Clamp floating point drift so identical vectors never exceed 1.
	if sim > 1 {
		return 1
	}
	if sim < 0 {
		return 0
	}
	return sim
}
