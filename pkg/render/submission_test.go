package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-vortex/pkg/render"
)

func TestHiddenFields(t *testing.T) {
	base := map[string]string{
		" flow ": "profile",
		"":       "ignored",
		"_step":  "1",
	}

	got := render.HiddenFields(base,
		render.StepField(2),
		render.HiddenField{Name: render.HiddenAction, Value: render.ActionBack},
		render.HiddenField{Name: "  ", Value: "skip"},
	)

	want := []render.HiddenField{
		{Name: "_action", Value: "back"},
		{Name: "_step", Value: "2"},
		{Name: "flow", Value: "profile"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
}
