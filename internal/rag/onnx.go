package rag

import (
	"fmt"
	"os"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// onnxModel wraps a MiniLM-class sentence transformer exported to ONNX,
// with its matching tokenizer.json.
type onnxModel struct {
	tok     *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
}

func loadONNXModel(modelPath, tokenizerPath, libraryPath string) (*onnxModel, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	tok, err := pretrained.FromFile(tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx environment: %w", err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer opts.Destroy()

	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("graph optimization: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &onnxModel{tok: tok, session: session}, nil
}

// embed runs a single text through the model and mean-pools the last hidden
// state over the attention mask.
func (m *onnxModel) embed(text string) ([]float32, error) {
	inputs := []tokenizer.EncodeInput{
		tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(text)),
	}
	encodings, err := m.tok.EncodeBatch(inputs, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	if len(encodings) == 0 {
		return nil, fmt.Errorf("tokenize: empty encoding")
	}

	enc := encodings[0]
	ids := enc.GetIds()
	mask := enc.GetAttentionMask()
	seqLen := len(ids)
	if seqLen == 0 {
		return nil, fmt.Errorf("tokenize: zero-length sequence")
	}

	inputIds := make([]int64, seqLen)
	attentionMask := make([]int64, seqLen)
	tokenTypeIds := make([]int64, seqLen)
	for i := 0; i < seqLen; i++ {
		inputIds[i] = int64(ids[i])
		attentionMask[i] = int64(mask[i])
	}

	shape := ort.NewShape(1, int64(seqLen))

	inputIdsTensor, err := ort.NewTensor(shape, inputIds)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer inputIdsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	tokenTypeIdsTensor, err := ort.NewTensor(shape, tokenTypeIds)
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer tokenTypeIdsTensor.Destroy()

	outputs := make([]ort.Value, 1)
	err = m.session.Run(
		[]ort.Value{inputIdsTensor, attentionMaskTensor, tokenTypeIdsTensor},
		outputs,
	)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	defer outputs[0].Destroy()

	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output tensor is not float32")
	}

	// Output: [1, sequence_length, hidden_dim]
	outShape := outputTensor.GetShape()
	if len(outShape) != 3 {
		return nil, fmt.Errorf("unexpected output rank %d", len(outShape))
	}
	hiddenDim := int(outShape[2])
	if hiddenDim != Dim {
		return nil, fmt.Errorf("model hidden dim %d, want %d", hiddenDim, Dim)
	}
	outSeqLen := int(outShape[1])
	data := outputTensor.GetData()

	// Mean pooling over attended tokens. Copy out of the tensor's memory
	// before it is destroyed.
	vec := make([]float32, Dim)
	var attended float32
	for t := 0; t < outSeqLen && t < seqLen; t++ {
		if attentionMask[t] == 0 {
			continue
		}
		attended++
		base := t * hiddenDim
		for d := 0; d < hiddenDim; d++ {
			vec[d] += data[base+d]
		}
	}
	if attended == 0 {
		return nil, fmt.Errorf("no attended tokens")
	}
	for d := range vec {
		vec[d] /= attended
	}
	return vec, nil
}

func (m *onnxModel) close() {
	if m.session != nil {
		m.session.Destroy()
	}
	ort.DestroyEnvironment()
}
