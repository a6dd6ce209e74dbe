package components

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-vortex/pkg/model"
)

func TestRegistryDescriptorIsACopy(t *testing.T) {
	reg := New()
	renderer := func(buf *bytes.Buffer, field model.Field, data ComponentData) error { return nil }

	if err := reg.Register("test", Descriptor{Renderer: renderer, Stylesheets: []string{"/a.css"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor("TEST")
	if !ok {
		t.Fatalf("descriptor not found")
	}

	desc.Stylesheets = append(desc.Stylesheets, "/mutated.css")

	original, _ := reg.Descriptor("test")
	if len(original.Stylesheets) != 1 || original.Stylesheets[0] != "/a.css" {
		t.Fatalf("registry descriptor mutated: %#v", original.Stylesheets)
	}

	if err := reg.Register("nil", Descriptor{}); err == nil {
		t.Fatalf("expected nil renderer error")
	}
}

func TestRegistryStylesheetsDeduplicates(t *testing.T) {
	reg := New()
	renderer := func(buf *bytes.Buffer, field model.Field, data ComponentData) error { return nil }

	reg.MustRegister("input", Descriptor{Renderer: renderer, Stylesheets: []string{"/shared.css", "/input.css"}})
	reg.MustRegister("select", Descriptor{Renderer: renderer, Stylesheets: []string{"/shared.css", "/select.css"}})

	got := reg.Stylesheets([]string{"input", "select", "missing"})
	want := []string{"/shared.css", "/input.css", "/select.css"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
}

func TestForField(t *testing.T) {
	cases := map[string]model.Field{
		NameInput:    {Type: model.FieldTypeEmail},
		NameTextarea: {Type: model.FieldTypeTextArea},
		NameSelect:   {Type: model.FieldTypeSelect},
		NameDate:     {Type: model.FieldTypeDate},
		NameUpload:   {Type: model.FieldTypeFile},
		NameCode:     {Type: model.FieldTypeCode},
		"custom":     {Type: model.FieldTypeText, Metadata: map[string]string{"component": " Custom "}},
	}
	for want, field := range cases {
		if got := ForField(field); got != want {
			t.Errorf("ForField(%+v) = %q, want %q", field, got, want)
		}
	}

	names := NewDefaultRegistry().Names()
	if diff := cmp.Diff([]string{NameCode, NameDate, NameInput, NameSelect, NameTextarea, NameUpload}, names); diff != "" {
		t.Fatalf("default names mismatch (-want +got):\n%s", diff)
	}
}
