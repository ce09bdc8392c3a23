// Package neural_network provides a single hidden layer perceptron that
// maps demographic feature vectors to a softmax over names.
package neural_network

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

// Default hyperparameters.
const (
	DefaultHiddenUnits  = 15
	DefaultLearningRate = 0.05
	DefaultEpochs       = 200
)

// MLPClassifier is a 27 -> hidden -> names network with sigmoid units on
// both layers and a softmax on top, trained by per-sample SGD.
type MLPClassifier struct {
	state *model.StateManager

	hiddenUnits  int
	learningRate float64
	epochs       int
	rng          *rand.Rand
	logger       log.Logger
	callbacks    []model.Callback

	w1 *mat.Dense // inputs x hidden
	b1 *mat.VecDense
	w2 *mat.Dense // hidden x outputs
	b2 *mat.VecDense

	vocab *model.Vocabulary
}

// Option configures an MLPClassifier.
type Option func(*MLPClassifier)

// WithHiddenUnits sets the width of the hidden layer.
func WithHiddenUnits(n int) Option {
	return func(m *MLPClassifier) {
		m.hiddenUnits = n
	}
}

// WithLearningRate sets the SGD step size.
func WithLearningRate(lr float64) Option {
	return func(m *MLPClassifier) {
		m.learningRate = lr
	}
}

// WithEpochs sets the number of passes over the training data.
func WithEpochs(n int) Option {
	return func(m *MLPClassifier) {
		m.epochs = n
	}
}

// WithRand sets the random source for weight initialization and shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(m *MLPClassifier) {
		m.rng = rng
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(m *MLPClassifier) {
		m.logger = logger
	}
}

// CrossEntropyKey names the mean per-epoch loss in callback EvalResults.
const CrossEntropyKey = "cross_entropy"

// WithCallbacks registers callbacks run after every epoch. They receive
// CrossEntropyKey in EvalResults.
func WithCallbacks(cbs ...model.Callback) Option {
	return func(m *MLPClassifier) {
		m.callbacks = append(m.callbacks, cbs...)
	}
}

// NewMLPClassifier creates an unfitted network.
func NewMLPClassifier(opts ...Option) *MLPClassifier {
	m := &MLPClassifier{
		state:        model.NewStateManager(),
		hiddenUnits:  DefaultHiddenUnits,
		learningRate: DefaultLearningRate,
		epochs:       DefaultEpochs,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if m.logger == nil {
		m.logger = log.GetLoggerWithName("neural_network.mlp")
	}
	m.logger = m.logger.With(log.ModelNameKey, "MLPClassifier")
	return m
}

// Fit trains the network. Empty input is a no-op that leaves the network
// unfitted. Samples are reshuffled every epoch and the context is checked
// between epochs.
func (m *MLPClassifier) Fit(ctx context.Context, X []preprocessing.FeatureVector, y []string) error {
	if len(X) != len(y) {
		return errors.NewValueError("MLPClassifier.Fit", "X and y must have the same number of samples")
	}
	if len(X) == 0 {
		m.logger.Warn("No training data, network left untrained", log.OperationKey, log.OperationFit)
		return nil
	}
	if m.hiddenUnits < 1 {
		return errors.NewValidationError("hiddenUnits", "must be at least 1", m.hiddenUnits)
	}
	if m.epochs < 1 {
		return errors.NewValidationError("epochs", "must be at least 1", m.epochs)
	}
	if !(m.learningRate > 0) {
		return errors.NewValidationError("learningRate", "must be positive", m.learningRate)
	}

	start := time.Now()
	vocab := model.NewVocabulary(y)
	nIn, nHidden, nOut := preprocessing.NumFeatures, m.hiddenUnits, vocab.Len()

	w1 := m.uniformDense(nIn, nHidden)
	w2 := m.uniformDense(nHidden, nOut)
	b1 := mat.NewVecDense(nHidden, nil)
	b2 := mat.NewVecDense(nOut, nil)

	targets := make([]int, len(y))
	for i, label := range y {
		targets[i], _ = vocab.Index(label)
	}

	h := mat.NewVecDense(nHidden, nil)
	out := mat.NewVecDense(nOut, nil)
	deltaO := mat.NewVecDense(nOut, nil)
	deltaH := mat.NewVecDense(nHidden, nil)
	cl := model.NewCallbackList("MLPClassifier", m.callbacks...)

	m.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(X),
		log.LabelsKey, nOut,
		log.HiddenUnitsKey, nHidden,
		log.EpochKey, m.epochs,
	)

	for epoch := 0; epoch < m.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "mlp training stopped after %d epochs", epoch)
		}
		cl.BeforeIteration(epoch)

		loss := 0.0
		for _, i := range m.rng.Perm(len(X)) {
			x := mat.NewVecDense(nIn, X[i].Slice())
			forward(x, w1, b1, w2, b2, h, out)
			loss -= errors.StabilizeLog(out.AtVec(targets[i]))

			// Output error against the one-hot target.
			deltaO.CopyVec(out)
			deltaO.SetVec(targets[i], deltaO.AtVec(targets[i])-1)

			// Hidden error uses W2 before its update.
			deltaH.MulVec(w2, deltaO)
			for j := 0; j < nHidden; j++ {
				hj := h.AtVec(j)
				deltaH.SetVec(j, deltaH.AtVec(j)*hj*(1-hj))
			}

			var g2 mat.Dense
			g2.Outer(m.learningRate, h, deltaO)
			w2.Sub(w2, &g2)
			b2.AddScaledVec(b2, -m.learningRate, deltaO)

			var g1 mat.Dense
			g1.Outer(m.learningRate, x, deltaH)
			w1.Sub(w1, &g1)
			b1.AddScaledVec(b1, -m.learningRate, deltaH)
		}
		loss /= float64(len(X))

		if err := errors.CheckScalar(CrossEntropyKey, loss, epoch); err != nil {
			return err
		}
		if err := errors.CheckMatrix("mlp_input_weights", w1, nIn, nHidden, epoch); err != nil {
			return err
		}
		if err := cl.AfterIteration(epoch, map[string]float64{CrossEntropyKey: loss}); err != nil {
			return err
		}
		if cl.ShouldStop() {
			m.logger.Info("Training stopped by callback", log.EpochKey, epoch, log.LossKey, loss)
			break
		}
	}

	m.w1, m.b1, m.w2, m.b2 = w1, b1, w2, b2
	m.vocab = vocab
	m.state.SetFitted(len(X), nOut)
	m.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (m *MLPClassifier) uniformDense(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = m.rng.Float64() - 0.5
	}
	return mat.NewDense(r, c, data)
}

// forward writes the hidden activations into h and the softmax output into
// out.
func forward(x *mat.VecDense, w1 *mat.Dense, b1 *mat.VecDense, w2 *mat.Dense, b2 *mat.VecDense, h, out *mat.VecDense) {
	h.MulVec(w1.T(), x)
	h.AddVec(h, b1)
	sigmoidVec(h)

	out.MulVec(w2.T(), h)
	out.AddVec(out, b2)
	sigmoidVec(out)
	softmax(out)
}

func sigmoidVec(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		v.SetVec(i, errors.Sigmoid(v.AtVec(i)))
	}
}

// softmax normalizes v in place, shifting by the max for stability.
func softmax(v *mat.VecDense) {
	vals := make([]float64, v.Len())
	for i := range vals {
		vals[i] = v.AtVec(i)
	}
	maxV := floats.Max(vals)
	for i := range vals {
		vals[i] = math.Exp(vals[i] - maxV)
	}
	floats.Scale(1/floats.Sum(vals), vals)
	for i, p := range vals {
		v.SetVec(i, p)
	}
}

// PredictProba returns the softmax output in vocabulary order.
func (m *MLPClassifier) PredictProba(fv preprocessing.FeatureVector) (model.Distribution, error) {
	if err := m.state.RequireFitted("MLPClassifier", "Predict"); err != nil {
		return model.Distribution{}, err
	}
	_, nHidden := m.w1.Dims()
	h := mat.NewVecDense(nHidden, nil)
	out := mat.NewVecDense(m.vocab.Len(), nil)
	forward(mat.NewVecDense(preprocessing.NumFeatures, fv.Slice()), m.w1, m.b1, m.w2, m.b2, h, out)

	probs := make([]float64, out.Len())
	for i := range probs {
		probs[i] = out.AtVec(i)
	}
	if err := errors.CheckNumericalStability("MLPClassifier.PredictProba", probs, 0); err != nil {
		return model.Distribution{}, err
	}
	return model.Distribution{Labels: m.vocab.Labels(), Probs: probs}, nil
}

// Predict returns the top 3 names.
func (m *MLPClassifier) Predict(fv preprocessing.FeatureVector) ([]model.NamePrediction, error) {
	d, err := m.PredictProba(fv)
	if err != nil {
		return nil, err
	}
	return d.Top(model.TopK), nil
}

// Evaluate returns the top-1 accuracy on X, y.
func (m *MLPClassifier) Evaluate(X []preprocessing.FeatureVector, y []string) (float64, error) {
	if err := m.state.RequireFitted("MLPClassifier", "Evaluate"); err != nil {
		return 0, err
	}
	return model.TopOneAccuracy(X, y, m.Predict)
}

// IsFitted reports whether the network has been trained.
func (m *MLPClassifier) IsFitted() bool { return m.state.IsFitted() }

// Labels returns the output vocabulary in first-seen order.
func (m *MLPClassifier) Labels() []string {
	if m.vocab == nil {
		return nil
	}
	return m.vocab.Labels()
}

// Name returns the estimator name.
func (m *MLPClassifier) Name() string { return "MLPClassifier" }

// GetParams returns the hyperparameters.
func (m *MLPClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"hidden_units":  m.hiddenUnits,
		"learning_rate": m.learningRate,
		"epochs":        m.epochs,
	}
}
