// Package analyzertest provides a scripted Model for tests of code that
// depends on the analyzer.
package analyzertest

import (
	"context"
	"sync"

	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

// Reply is one scripted answer: Text is returned unless Err is set.
type Reply struct {
	Text string
	Err  error
}

// ScriptedModel returns queued replies in order and records every call.
type ScriptedModel struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

// Call is one recorded Generate invocation.
type Call struct {
	Model  string
	Prompt string
}

// NewScriptedModel queues replies.
func NewScriptedModel(replies ...Reply) *ScriptedModel {
	return &ScriptedModel{replies: replies}
}

// Texts is shorthand for a script of successful replies.
func Texts(texts ...string) *ScriptedModel {
	rs := make([]Reply, len(texts))
	for i, t := range texts {
		rs[i] = Reply{Text: t}
	}
	return NewScriptedModel(rs...)
}

func (m *ScriptedModel) Generate(ctx context.Context, model, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Model: model, Prompt: prompt})
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeModelUnavailable, "scripted model")
	}
	if len(m.replies) == 0 {
		return "", apperrors.New(apperrors.CodeModelUnavailable, "scripted model has no reply left")
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r.Text, r.Err
}

// CallCount returns how many times Generate ran.
func (m *ScriptedModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *ScriptedModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// ValidJSON is a well-formed answer whose locked fields are deliberately
// wrong so that enforcement is visible.
const ValidJSON = `{
  "config": {
    "minCharCount": 30,
    "symptomScores": {"headache": 4, "dizziness": 3},
    "urgencyThresholds": {"high": 8, "moderate": 4}
  },
  "urgency": {
    "high": {"color": "blue", "label": "Very urgent", "description": "Sudden severe symptoms.", "advice": "Seek emergency care."},
    "moderate": {"color": "orange", "label": "Medium", "description": "Symptoms persist.", "advice": "Book a visit with a doctor."},
    "low": {"color": "teal", "label": "Mild", "description": "Symptoms are mild.", "advice": "Rest and drink fluids."}
  },
  "conditions": {
    "high": [
      {"name": "Stroke", "tag": "neurological", "description": "Interrupted blood supply to the brain."},
      {"name": "Meningitis", "tag": "infection", "description": "Inflammation of the brain membranes."},
      {"name": "Hypertensive crisis", "tag": "cardiovascular", "description": "Very high blood pressure."}
    ],
    "moderate": [
      {"name": "Migraine", "tag": "neurological", "description": "Recurring throbbing headaches."},
      {"name": "Vestibular neuritis", "tag": "ear", "description": "Inner ear inflammation."},
      {"name": "Anemia", "tag": "blood", "description": "Low red blood cell count."}
    ],
    "low": [
      {"name": "Tension headache", "tag": "common", "description": "Muscle tension around the head."},
      {"name": "Dehydration", "tag": "common", "description": "Not enough fluids."},
      {"name": "Lack of sleep", "tag": "lifestyle", "description": "Too little rest."}
    ]
  }
}`
