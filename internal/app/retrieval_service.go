package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"ragserve/internal/embedding"
	"ragserve/internal/model"
)

const defaultTopK = 5

// ScoredChunk is one ranked retrieval result.
type ScoredChunk struct {
	ChunkID       uint    `json:"chunk_id"`
	DocumentID    uint    `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	ChunkIndex    int     `json:"chunk_index"`
	Content       string  `json:"content"`
	Score         float32 `json:"score"`
	TokenCount    int     `json:"token_count"`
	Source        string  `json:"source"`
}

type QueryInput struct {
	ChatID      *uint
	WorkspaceID *uint
	Question    string
	TopK        int
}

type QueryResult struct {
	Results []ScoredChunk `json:"results"`
	Context string        `json:"context"`
	Count   int           `json:"count"`
}

// ScopeStats aggregates document and chunk counts for one chat or workspace.
type ScopeStats struct {
	DocumentCount   int `json:"document_count"`
	ChunkCount      int `json:"chunk_count"`
	TotalTokens     int `json:"total_tokens"`
	AvgChunksPerDoc int `json:"avg_chunks_per_doc"`
}

// RetrievalService answers questions against the scoped document set and
// assembles an LLM-ready context string.
type RetrievalService struct {
	docs     DocumentStore
	chunks   ChunkStore
	embedder embedding.Embedder
	policy   AccessPolicy
	topK     int
}

func NewRetrievalService(
	docs DocumentStore,
	chunks ChunkStore,
	embedder embedding.Embedder,
	policy AccessPolicy,
	topK int,
) *RetrievalService {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &RetrievalService{
		docs:     docs,
		chunks:   chunks,
		embedder: embedder,
		policy:   policy,
		topK:     topK,
	}
}

// Query embeds the question once, gathers workspace- and chat-scoped
// candidate documents (deduplicated, first occurrence wins), scores every
// readable chunk, and returns the top-k with the formatted context string.
func (s *RetrievalService) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}

	empty := &QueryResult{Results: []ScoredChunk{}, Context: "", Count: 0}
	if s.policy.ShouldSkip(ctx, input.ChatID) {
		return empty, nil
	}

	topK := input.TopK
	if topK <= 0 {
		topK = s.topK
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidateDocuments(ctx, input.ChatID, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return empty, nil
	}

	docIDs := make([]uint, len(candidates))
	docsByID := make(map[uint]*model.Document, len(candidates))
	for i := range candidates {
		docIDs[i] = candidates[i].ID
		docsByID[candidates[i].ID] = &candidates[i]
	}

	chunks, err := s.chunks.FindChunksByDocumentIDs(ctx, docIDs)
	if err != nil {
		return nil, err
	}

	scored, skipped := scoreChunks(queryVec, chunks, docsByID)
	if skipped > 0 {
		log.Printf("retrieval: skipped %d of %d chunks with missing or unreadable embeddings",
			skipped, len(chunks))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}

	return &QueryResult{
		Results: scored,
		Context: BuildContextString(scored),
		Count:   len(scored),
	}, nil
}

// candidateDocuments unions workspace-scoped and chat-scoped documents,
// deduplicated by document ID with the first occurrence winning.
func (s *RetrievalService) candidateDocuments(ctx context.Context, chatID, workspaceID *uint) ([]model.Document, error) {
	var out []model.Document
	seen := make(map[uint]struct{})

	appendDocs := func(docs []model.Document) {
		for _, doc := range docs {
			if _, ok := seen[doc.ID]; ok {
				continue
			}
			seen[doc.ID] = struct{}{}
			out = append(out, doc)
		}
	}

	if workspaceID != nil {
		docs, err := s.docs.FindDocumentsByWorkspace(ctx, *workspaceID)
		if err != nil {
			return nil, err
		}
		appendDocs(docs)
	}
	if chatID != nil {
		docs, err := s.docs.FindDocumentsByChat(ctx, *chatID)
		if err != nil {
			return nil, err
		}
		appendDocs(docs)
	}
	return out, nil
}

// scoreChunks computes cosine similarity for every chunk with a readable
// embedding. Chunks with nil, unparseable, or wrong-dimension embeddings
// are skipped and counted, never fatal.
func scoreChunks(queryVec []float32, chunks []model.DocumentChunk, docsByID map[uint]*model.Document) ([]ScoredChunk, int) {
	scored := make([]ScoredChunk, 0, len(chunks))
	skipped := 0
	for i := range chunks {
		chunk := &chunks[i]
		doc, ok := docsByID[chunk.DocumentID]
		if !ok {
			skipped++
			continue
		}
		vec, err := chunk.EmbeddingVector()
		if err != nil {
			skipped++
			continue
		}
		score, err := embedding.CosineSimilarity(queryVec, vec)
		if err != nil {
			skipped++
			continue
		}
		scored = append(scored, ScoredChunk{
			ChunkID:       chunk.ID,
			DocumentID:    chunk.DocumentID,
			DocumentTitle: doc.Title,
			ChunkIndex:    chunk.ChunkIndex,
			Content:       chunk.Content,
			Score:         score,
			TokenCount:    chunk.TokenCount,
			Source:        doc.Source(),
		})
	}
	return scored, skipped
}

// BuildContextString renders the ranked chunks into the block injected into
// the LLM prompt. The layout is a de facto external contract; keep it stable.
func BuildContextString(results []ScoredChunk) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevant information from knowledge base:\n\n")
	for i, r := range results {
		label := "[Chat]"
		if r.Source == model.SourceWorkspace {
			label = "[Workspace]"
		}
		fmt.Fprintf(&b, "[%d] %s - %q (relevance: %.1f%%)\n", i+1, label, r.DocumentTitle, r.Score*100)
		b.WriteString(r.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// ChatStats aggregates document, chunk, and token counts for one chat.
func (s *RetrievalService) ChatStats(ctx context.Context, chatID uint) (*ScopeStats, error) {
	docs, err := s.docs.FindDocumentsByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.statsFor(ctx, docs)
}

// WorkspaceStats aggregates document, chunk, and token counts for one workspace.
func (s *RetrievalService) WorkspaceStats(ctx context.Context, workspaceID uint) (*ScopeStats, error) {
	docs, err := s.docs.FindDocumentsByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return s.statsFor(ctx, docs)
}

func (s *RetrievalService) statsFor(ctx context.Context, docs []model.Document) (*ScopeStats, error) {
	if len(docs) == 0 {
		return &ScopeStats{}, nil
	}
	ids := make([]uint, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	chunkCount, totalTokens, err := s.chunks.ChunkStats(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &ScopeStats{
		DocumentCount:   len(docs),
		ChunkCount:      int(chunkCount),
		TotalTokens:     int(totalTokens),
		AvgChunksPerDoc: int(math.Round(float64(chunkCount) / float64(len(docs)))),
	}, nil
}
