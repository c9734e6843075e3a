package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Longevitate/carefinder/internal/domain/entities"
	"github.com/Longevitate/carefinder/internal/domain/providers"
	apperrors "github.com/Longevitate/carefinder/pkg/errors"
)

// DefaultSemanticThreshold is the cosine similarity a document needs to match.
const DefaultSemanticThreshold = 0.5

// SemanticMatcher compares reason and document embeddings by cosine similarity.
type SemanticMatcher struct {
	embedder  providers.TextEmbedder
	threshold float64
}

// NewSemanticMatcher creates a semantic matcher.
func NewSemanticMatcher(embedder providers.TextEmbedder, threshold float64) *SemanticMatcher {
	return &SemanticMatcher{embedder: embedder, threshold: threshold}
}

// Strategy implements Matcher.
func (m *SemanticMatcher) Strategy() entities.MatchStrategy {
	return entities.MatchStrategySemantic
}

// Threshold returns the similarity cut-off.
func (m *SemanticMatcher) Threshold() float64 {
	return m.threshold
}

// Match implements Matcher for a single document without a snapshot index.
func (m *SemanticMatcher) Match(ctx context.Context, doc entities.MatchDocument, reason string) (entities.MatchResult, error) {
	vec, err := m.EmbedReason(ctx, reason)
	if err != nil {
		return entities.MatchResult{RecordID: doc.ID}, err
	}
	return m.Score(ctx, nil, doc, vec)
}

// EmbedReason embeds the reason text once per request.
func (m *SemanticMatcher) EmbedReason(ctx context.Context, reason string) ([]float32, error) {
	vecs, err := m.embedder.Embed(ctx, []string{reason})
	if err != nil {
		return nil, apperrors.NewExternalError("failed to embed reason", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, apperrors.NewExternalError("embedder returned no vector for reason", nil)
	}
	return vecs[0], nil
}

// Score compares a document against a reason vector. The document vector is
// read from the snapshot index when present and embedded on a miss.
func (m *SemanticMatcher) Score(ctx context.Context, snapshot *entities.Snapshot, doc entities.MatchDocument, reasonVec []float32) (entities.MatchResult, error) {
	result := entities.MatchResult{RecordID: doc.ID, Strategy: entities.MatchStrategySemantic}
	if len(doc.Texts) == 0 {
		return result, nil
	}

	docVec, ok := snapshot.Embedding(doc.ID)
	if !ok {
		vecs, err := m.embedder.Embed(ctx, []string{DocumentText(doc)})
		if err != nil {
			return result, apperrors.NewExternalError(fmt.Sprintf("failed to embed document %s", doc.ID), err)
		}
		if len(vecs) != 1 {
			return result, apperrors.NewExternalError(fmt.Sprintf("embedder returned %d vectors for document %s", len(vecs), doc.ID), nil)
		}
		docVec = vecs[0]
	}

	sim, err := CosineSimilarity(reasonVec, docVec)
	if err != nil {
		return result, apperrors.NewExternalError(fmt.Sprintf("document %s", doc.ID), err)
	}

	result.Score = sim
	if sim >= m.threshold {
		result.Matched = true
		result.Explanation = fmt.Sprintf("semantic similarity %.2f", sim)
	}
	return result, nil
}

// DocumentText is the single string a document is embedded from.
func DocumentText(doc entities.MatchDocument) string {
	return strings.Join(doc.Texts, ". ")
}

// CosineSimilarity returns the cosine of the angle between a and b. Zero
// vectors have similarity 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.New("embedding dimensions differ")
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
