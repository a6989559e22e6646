package registry

import (
	"testing"

	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

type stubStimulus struct {
	trial.StimulusFunc
	trial.StateFunc
	id string
}

func (s stubStimulus) ID() string    { return s.id }
func (s stubStimulus) Title() string { return "Stub " + s.id }

func newStub(id string) Factory {
	return func() Stimulus {
		return stubStimulus{
			StimulusFunc: func(*trial.Surface, trial.Config) error { return nil },
			StateFunc:    func() (trial.GameState, bool) { return trial.GameState{}, false },
			id:           id,
		}
	}
}

func TestRegisterAndCreate(t *testing.T) {
	Register("zz-stub", newStub("zz-stub"))
	Register("aa-stub", newStub("aa-stub"))

	if !Exists("zz-stub") {
		t.Error("Exists(zz-stub) = false, expected true")
	}

	s, err := Create("aa-stub")
	if err != nil {
		t.Fatalf("Create(aa-stub) failed: %v", err)
	}
	if s.ID() != "aa-stub" {
		t.Errorf("ID() = %q, expected %q", s.ID(), "aa-stub")
	}

	var ids []string
	for _, info := range List() {
		ids = append(ids, info.ID)
	}
	aa, zz := -1, -1
	for i, id := range ids {
		switch id {
		case "aa-stub":
			aa = i
		case "zz-stub":
			zz = i
		}
	}
	if aa < 0 || zz < 0 || aa > zz {
		t.Errorf("List() = %v, expected both stubs sorted by ID", ids)
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("no-such-stimulus"); err == nil {
		t.Error("Create(unknown) should fail")
	}
	if Exists("no-such-stimulus") {
		t.Error("Exists(unknown) = true, expected false")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-stub", newStub("dup-stub"))

	defer func() {
		if recover() == nil {
			t.Error("second Register should panic")
		}
	}()
	Register("dup-stub", newStub("dup-stub"))
}
