package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/veridict/veridict/internal/model"
)

// mockVerifier echoes the answer back with a simulated delay
type mockVerifier struct {
	failOn string
}

func (m *mockVerifier) Verify(ctx context.Context, question, answer string) (*model.Result, error) {
	time.Sleep(5 * time.Millisecond)
	if answer == m.failOn {
		return nil, errors.New("verification failed")
	}
	return &model.Result{Question: question, Answer: answer}, nil
}

func TestBatchProcessor_PreservesInputOrder(t *testing.T) {
	processor := NewBatchProcessor(&mockVerifier{}, 4)

	pairs := make([]Pair, 10)
	for i := range pairs {
		pairs[i] = Pair{
			Question: fmt.Sprintf("question %d", i),
			Answer:   fmt.Sprintf("answer %d", i),
		}
	}

	outcomes := processor.ProcessPairs(context.Background(), pairs)

	if len(outcomes) != len(pairs) {
		t.Fatalf("expected %d outcomes, got %d", len(pairs), len(outcomes))
	}
	for i, outcome := range outcomes {
		if outcome.Index != i {
			t.Errorf("outcome %d has index %d", i, outcome.Index)
		}
		if outcome.Err != nil {
			t.Errorf("outcome %d: unexpected error %v", i, outcome.Err)
			continue
		}
		if outcome.Result.Answer != pairs[i].Answer {
			t.Errorf("outcome %d: expected answer %q, got %q", i, pairs[i].Answer, outcome.Result.Answer)
		}
	}
}

func TestBatchProcessor_ItemErrorDoesNotAbortBatch(t *testing.T) {
	processor := NewBatchProcessor(&mockVerifier{failOn: "bad answer"}, 2)

	pairs := []Pair{
		{Question: "q1", Answer: "good answer"},
		{Question: "q2", Answer: "bad answer"},
		{Question: "q3", Answer: "another good answer"},
	}

	outcomes := processor.ProcessPairs(context.Background(), pairs)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Errorf("expected items 0 and 2 to succeed, got %v and %v", outcomes[0].Err, outcomes[2].Err)
	}
	if outcomes[1].Err == nil {
		t.Error("expected item 1 to carry its error")
	}
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	processor := NewBatchProcessor(&mockVerifier{}, 2)

	outcomes := processor.ProcessPairs(context.Background(), nil)
	if len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
}
