package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Train",
			kind:    "empty dataset",
			err:     fmt.Errorf("no records"),
			wantMsg: "nameml: Train: empty dataset: no records",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not trained",
			err:     nil,
			wantMsg: "nameml: Predict: not trained",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestModelErrorUnwrapsSentinel(t *testing.T) {
	err := NewModelError("Service.Train", "preprocess", ErrEmptyData)
	if !Is(err, ErrEmptyData) {
		t.Error("Expected Is(err, ErrEmptyData) to be true")
	}
	if Is(err, ErrInsufficientData) {
		t.Error("Did not expect Is(err, ErrInsufficientData)")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("RandomForestClassifier", "Predict")

	want := "nameml: RandomForestClassifier: this model is not trained yet. Call Train() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
	if !IsNotFitted(err) {
		t.Error("IsNotFitted should report true")
	}
	if !IsNotFitted(Wrap(err, "service")) {
		t.Error("IsNotFitted should see through wrapping")
	}
	if IsNotFitted(ErrEmptyData) {
		t.Error("IsNotFitted should be false for other errors")
	}
}

func TestNewInvalidConfigurationError(t *testing.T) {
	err := NewInvalidConfigurationError("modelType", "svm", "unsupported model type")

	want := `nameml: invalid configuration for 'modelType' ("svm"): unsupported model type`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var cfgErr *InvalidConfigurationError
	if !As(err, &cfgErr) {
		t.Fatal("Error should be castable to *InvalidConfigurationError")
	}
	if cfgErr.Value != "svm" {
		t.Errorf("Value = %q, want svm", cfgErr.Value)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("trainTestSplit", "must be in (0, 1)", 1.5)

	want := "nameml: validation failed for parameter 'trainTestSplit': must be in (0, 1) (got: 1.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValidationError")
	}
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("SplitTrainTest", "ratio: 0 (must be positive)")
	if err.Error() != "nameml: SplitTrainTest: ratio: 0 (must be positive)" {
		t.Errorf("unexpected message %q", err.Error())
	}
	var valErr *ValueError
	if !As(err, &valErr) {
		t.Error("Error should be castable to *ValueError")
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: %d records dropped", "CleanData", 5)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in CleanData: 5 records dropped") {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}

func TestWarnRoutesToZerologSink(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	SetZerologWarnFunc(func(w error) {
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			logger.Warn().EmbedObject(m).Msg(w.Error())
			return
		}
		logger.Warn().Msg(w.Error())
	})
	defer SetZerologWarnFunc(nil)

	Warn(NewUndefinedMetricWarning("accuracy", "empty test split", 0))

	out := buf.String()
	for _, want := range []string{`"metric":"accuracy"`, `"type":"UndefinedMetricWarning"`, `"level":"warn"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestWarnFallbackHandler(t *testing.T) {
	var got error
	SetWarningHandler(func(w error) { got = w })
	defer SetWarningHandler(func(w error) {})

	w := NewModelDriftWarning("DDM", 0.42, 0.3, "retrain")
	Warn(w)

	if got != w {
		t.Fatalf("fallback handler received %v", got)
	}
	if !strings.Contains(w.Error(), "Model drift detected by DDM") {
		t.Errorf("unexpected message %q", w.Error())
	}
}
