package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Options configures the local ONNX embedding engine.
type Options struct {
	ModelPath         string
	VocabPath         string
	ONNXSharedLibPath string
	Dimensions        int
	MaxSequenceLength int
	BatchSize         int
}

// Engine runs a sentence-transformer style ONNX model (384-dim MiniLM by
// default) entirely in-process. The model is loaded lazily on first use;
// all inference goes through one mutex so Unload never races an in-flight
// embed call.
type Engine struct {
	mu sync.Mutex

	modelPath string
	vocabPath string
	libPath   string
	dims      int
	maxSeqLen int
	batchSize int

	session    *ort.DynamicAdvancedSession
	tokenizer  *wordpieceTokenizer
	inputNames []string
	inited     bool
}

func NewEngine(opts Options) *Engine {
	dims := opts.Dimensions
	if dims <= 0 {
		dims = 384
	}
	maxSeqLen := opts.MaxSequenceLength
	if maxSeqLen <= 0 {
		maxSeqLen = 256
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Engine{
		modelPath: opts.ModelPath,
		vocabPath: opts.VocabPath,
		libPath:   opts.ONNXSharedLibPath,
		dims:      dims,
		maxSeqLen: maxSeqLen,
		batchSize: batchSize,
	}
}

// Initialize loads the ONNX runtime, vocabulary, and model session.
// Idempotent; concurrent callers share the one load.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initLocked()
}

func (e *Engine) initLocked() error {
	if e.inited {
		return nil
	}

	if e.libPath != "" {
		ort.SetSharedLibraryPath(e.libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("%w: initialize onnx environment: %v", ErrModelInit, err)
	}

	tokenizer, err := newWordpieceTokenizer(e.vocabPath, e.maxSeqLen)
	if err != nil {
		return fmt.Errorf("%w: load vocabulary %s: %v", ErrModelInit, e.vocabPath, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(e.modelPath)
	if err != nil {
		return fmt.Errorf("%w: read model %s: %v", ErrModelInit, e.modelPath, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("%w: model %s has no inputs or outputs", ErrModelInit, e.modelPath)
	}
	inputNames := make([]string, len(inputs))
	for i := range inputs {
		inputNames[i] = inputs[i].Name
	}
	// Only the hidden-state output is pooled; extra outputs are ignored.
	outputNames := []string{outputs[0].Name}

	session, err := ort.NewDynamicAdvancedSession(e.modelPath, inputNames, outputNames, nil)
	if err != nil {
		return fmt.Errorf("%w: create session: %v", ErrModelInit, err)
	}

	e.tokenizer = tokenizer
	e.session = session
	e.inputNames = inputNames
	e.inited = true
	return nil
}

// Embed returns the normalized mean-pooled embedding for one text.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrInvalidInput)
	}
	vectors, err := e.run(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in sub-batches to bound peak memory. Output order
// matches input order; a failure in any sub-batch fails the whole call.
func (e *Engine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts to embed", ErrInvalidInput)
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: text %d is empty", ErrInvalidInput, i)
		}
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.run(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed sub-batch %d..%d failed: %w", start, end-1, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// Unload releases the model session and runtime so a later call reloads
// from scratch. Safe to call when never initialized.
func (e *Engine) Unload() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.inited {
		return nil
	}
	e.session.Destroy()
	e.session = nil
	e.tokenizer = nil
	e.inputNames = nil
	e.inited = false
	if err := ort.DestroyEnvironment(); err != nil {
		return fmt.Errorf("destroy onnx environment failed: %w", err)
	}
	return nil
}

func (e *Engine) Dimensions() int {
	return e.dims
}

func (e *Engine) run(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.initLocked(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := len(texts)
	tokenIDs := make([][]int64, batch)
	seqLen := 0
	for i, text := range texts {
		tokenIDs[i] = e.tokenizer.tokenize(text)
		if len(tokenIDs[i]) > seqLen {
			seqLen = len(tokenIDs[i])
		}
	}

	inputIDs := make([]int64, batch*seqLen)
	attention := make([]int64, batch*seqLen)
	tokenTypes := make([]int64, batch*seqLen)
	for i := range tokenIDs {
		offset := i * seqLen
		for j := 0; j < seqLen; j++ {
			inputIDs[offset+j] = e.tokenizer.padID
		}
		for j, id := range tokenIDs[i] {
			inputIDs[offset+j] = id
			attention[offset+j] = 1
		}
	}

	shape := ort.NewShape(int64(batch), int64(seqLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx new input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, attention)
	if err != nil {
		return nil, fmt.Errorf("onnx new attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()
	typeTensor, err := ort.NewTensor(shape, tokenTypes)
	if err != nil {
		return nil, fmt.Errorf("onnx new token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(batch), int64(seqLen), int64(e.dims)))
	if err != nil {
		return nil, fmt.Errorf("onnx new output tensor: %w", err)
	}
	defer outTensor.Destroy()

	inputs := []ort.Value{idsTensor, maskTensor, typeTensor}
	// Some exports omit token_type_ids.
	if len(e.inputNames) < len(inputs) {
		inputs = inputs[:len(e.inputNames)]
	}
	if err := e.session.Run(inputs, []ort.Value{outTensor}); err != nil {
		return nil, fmt.Errorf("onnx run failed: %w", err)
	}

	hidden := outTensor.GetData()
	out := make([][]float32, batch)
	for i := range out {
		rowHidden := hidden[i*seqLen*e.dims : (i+1)*seqLen*e.dims]
		rowMask := attention[i*seqLen : (i+1)*seqLen]
		out[i] = normalize(meanPool(rowHidden, rowMask, e.dims))
	}
	return out, nil
}

// meanPool averages token vectors weighted by the attention mask.
func meanPool(hidden []float32, mask []int64, dims int) []float32 {
	pooled := make([]float32, dims)
	var count float32
	for t := range mask {
		if mask[t] == 0 {
			continue
		}
		count++
		for d := 0; d < dims; d++ {
			pooled[d] += hidden[t*dims+d]
		}
	}
	if count == 0 {
		return pooled
	}
	for d := range pooled {
		pooled[d] /= count
	}
	return pooled
}

func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := float32(1.0 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}
