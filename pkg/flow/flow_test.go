package flow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/model"
	"github.com/goliatone/go-vortex/pkg/validation"
)

var fixedNow = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

func testEnv() validation.Env {
	return validation.Env{Now: func() time.Time { return fixedNow }}
}

func rule(kind string, params ...string) model.ValidationRule {
	r := model.ValidationRule{Kind: kind, Params: map[string]string{}}
	for i := 0; i+1 < len(params); i += 2 {
		r.Params[params[i]] = params[i+1]
	}
	return r
}

func profileDefinition() flow.Definition {
	return flow.Definition{
		ID:    "profile",
		Title: "Complete your profile",
		Path:  "/complete-profile",
		Steps: []flow.Step{
			{
				ID:    "basics",
				Title: "Basic Information",
				Fields: []model.Field{
					{Name: "country", Type: model.FieldTypeSelect, Required: true, Validations: []model.ValidationRule{
						rule(model.ValidationRuleMinLength, "value", "1", "message", "Please select your country"),
					}},
					{Name: "address", Type: model.FieldTypeTextArea, Required: true, Validations: []model.ValidationRule{
						rule(model.ValidationRuleMinLength, "value", "10", "message", "Please enter your complete address"),
					}},
					{Name: "birthdate", Type: model.FieldTypeDate, Required: true, Validations: []model.ValidationRule{
						rule(model.ValidationRuleMinAge, "value", "18"),
					}},
				},
			},
			{
				ID:    "professional",
				Title: "Professional Details",
				Fields: []model.Field{
					{Name: "panNumber", Required: true, Validations: []model.ValidationRule{
						rule(model.ValidationRuleLength, "value", "10", "message", "PAN number must be exactly 10 digits"),
						rule(model.ValidationRulePattern, "pattern", `^\d{10}$`, "message", "PAN number must be 10 digits"),
					}},
					{Name: "employment", Type: model.FieldTypeSelect, Required: true, Validations: []model.ValidationRule{
						rule(model.ValidationRuleMinLength, "value", "1", "message", "Please select your employment status"),
					}},
				},
			},
			{
				ID:    "documents",
				Title: "Identity Documents",
				Fields: []model.Field{
					{Name: "aadharFile", Type: model.FieldTypeFile, Validations: []model.ValidationRule{rule(model.ValidationRuleUpload)}},
					{Name: "passportFile", Type: model.FieldTypeFile, Validations: []model.ValidationRule{rule(model.ValidationRuleUpload)}},
					{Name: "selfieFile", Type: model.FieldTypeFile, Validations: []model.ValidationRule{rule(model.ValidationRuleUpload)}},
				},
			},
		},
	}
}

var (
	basicsInput = map[string]string{
		"country":   "India",
		"address":   "221B Baker Street, Mumbai",
		"birthdate": "1990-04-12",
	}
	professionalInput = map[string]string{
		"panNumber":  "1234567890",
		"employment": "Salaried",
	}
)

func TestStart(t *testing.T) {
	got := flow.Start(profileDefinition())
	want := flow.State{Flow: "profile", Step: 1, Record: flow.Record{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("start mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_FailingInputDoesNotAdvance(t *testing.T) {
	def := profileDefinition()
	state := flow.State{Flow: "profile", Step: 2, Record: flow.Record{"country": "India"}}

	tr, err := flow.Submit(def, state, map[string]string{"panNumber": "12345", "employment": ""}, testEnv())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if tr.Outcome != flow.OutcomeRejected {
		t.Fatalf("expected rejected, got %s", tr.Outcome)
	}
	if diff := cmp.Diff(state, tr.State); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
	wantErrs := validation.Errors{
		"panNumber":  {"PAN number must be exactly 10 digits"},
		"employment": {"Please select your employment status"},
	}
	if diff := cmp.Diff(wantErrs, tr.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_PassingInputAdvancesAndMerges(t *testing.T) {
	def := profileDefinition()
	state := flow.Start(def)

	tr, err := flow.Submit(def, state, basicsInput, testEnv())
	if err != nil {
		t.Fatalf("submit basics: %v", err)
	}
	if tr.Outcome != flow.OutcomeAdvanced || tr.State.Step != 2 {
		t.Fatalf("expected advance to step 2, got %s step %d", tr.Outcome, tr.State.Step)
	}
	if diff := cmp.Diff(flow.Record(basicsInput), tr.State.Record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if len(state.Record) != 0 {
		t.Fatalf("input state mutated: %v", state.Record)
	}

	tr, err = flow.Submit(def, tr.State, professionalInput, testEnv())
	if err != nil {
		t.Fatalf("submit professional: %v", err)
	}
	want := flow.Record(basicsInput).Merge(professionalInput)
	if diff := cmp.Diff(want, tr.State.Record); diff != "" {
		t.Fatalf("record union mismatch (-want +got):\n%s", diff)
	}
}

func TestBackThenResubmitYieldsSameRecord(t *testing.T) {
	def := profileDefinition()
	first, err := flow.Submit(def, flow.Start(def), basicsInput, testEnv())
	if err != nil {
		t.Fatal(err)
	}

	back := flow.Back(first.State)
	if back.Step != 1 {
		t.Fatalf("expected step 1 after back, got %d", back.Step)
	}
	if diff := cmp.Diff(first.State.Record, back.Record); diff != "" {
		t.Fatalf("back dropped record (-want +got):\n%s", diff)
	}

	again, err := flow.Submit(def, back, basicsInput, testEnv())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first.State, again.State); diff != "" {
		t.Fatalf("resubmit mismatch (-want +got):\n%s", diff)
	}
}

func TestBackOnFirstStepIsNoop(t *testing.T) {
	state := flow.Start(profileDefinition())
	if diff := cmp.Diff(state, flow.Back(state)); diff != "" {
		t.Fatalf("back on step 1 changed state (-want +got):\n%s", diff)
	}
}

func TestSubmit_FinalStepCompletes(t *testing.T) {
	def := profileDefinition()
	state := flow.State{Flow: "profile", Step: 3, Record: flow.Record(basicsInput).Merge(professionalInput)}

	tr, err := flow.Submit(def, state, map[string]string{"selfieFile": "upload-1"}, testEnv())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if tr.Outcome != flow.OutcomeCompleted || !tr.State.Done {
		t.Fatalf("expected completion, got %+v", tr)
	}
	want := state.Record.Merge(map[string]string{"aadharFile": "", "passportFile": "", "selfieFile": "upload-1"})
	if diff := cmp.Diff(want, tr.Record); diff != "" {
		t.Fatalf("completed record mismatch (-want +got):\n%s", diff)
	}

	if _, err := flow.Submit(def, tr.State, nil, testEnv()); !errors.Is(err, flow.ErrFlowCompleted) {
		t.Fatalf("expected ErrFlowCompleted, got %v", err)
	}
}

func TestSubmit_InvalidState(t *testing.T) {
	def := profileDefinition()
	if _, err := flow.Submit(def, flow.State{Flow: "profile", Step: 9}, nil, testEnv()); !errors.Is(err, flow.ErrStepOutOfRange) {
		t.Fatalf("expected ErrStepOutOfRange, got %v", err)
	}
	if _, err := flow.Submit(def, flow.State{Flow: "signup", Step: 1}, nil, testEnv()); !errors.Is(err, flow.ErrFlowMismatch) {
		t.Fatalf("expected ErrFlowMismatch, got %v", err)
	}
}

type countingCompleter struct {
	calls   int
	records []flow.Record
	err     error
}

func (c *countingCompleter) Complete(_ context.Context, _ string, record flow.Record) (flow.Completion, error) {
	c.calls++
	c.records = append(c.records, record.Clone())
	if c.err != nil {
		return flow.Completion{}, c.err
	}
	return flow.Completion{Redirect: "/dashboard"}, nil
}

func newController(t *testing.T, completer flow.Completer) *flow.Controller {
	t.Helper()
	registry := flow.NewRegistry()
	registry.MustRegister(profileDefinition())
	return flow.NewController(registry,
		flow.WithCompleter("profile", completer),
		flow.WithClock(func() time.Time { return fixedNow }),
	)
}

func TestController_CompleterInvokedOnceWithMergedRecord(t *testing.T) {
	completer := &countingCompleter{}
	ctrl := newController(t, completer)
	ctx := context.Background()

	state, err := ctrl.Start("profile")
	if err != nil {
		t.Fatal(err)
	}
	steps := []map[string]string{basicsInput, professionalInput, {"aadharFile": "a1"}}
	var tr flow.Transition
	for i, input := range steps {
		tr, err = ctrl.Submit(ctx, state, input)
		if err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		if i < 2 && completer.calls != 0 {
			t.Fatalf("completer called before final step")
		}
		state = tr.State
	}

	if completer.calls != 1 {
		t.Fatalf("expected exactly one completion, got %d", completer.calls)
	}
	want := flow.Record(basicsInput).Merge(professionalInput).Merge(map[string]string{
		"aadharFile": "a1", "passportFile": "", "selfieFile": "",
	})
	if diff := cmp.Diff(want, completer.records[0]); diff != "" {
		t.Fatalf("completed record mismatch (-want +got):\n%s", diff)
	}
	if tr.Completion.Redirect != "/dashboard" {
		t.Fatalf("unexpected redirect %q", tr.Completion.Redirect)
	}

	if _, err := ctrl.Submit(ctx, state, nil); !errors.Is(err, flow.ErrFlowCompleted) {
		t.Fatalf("expected ErrFlowCompleted on resubmit, got %v", err)
	}
	if completer.calls != 1 {
		t.Fatalf("completer re-invoked: %d", completer.calls)
	}
}

func TestController_CompleterFailureKeepsFinalStep(t *testing.T) {
	completer := &countingCompleter{err: errors.New("backend down")}
	ctrl := newController(t, completer)
	state := flow.State{Flow: "profile", Step: 3, Record: flow.Record{"country": "India"}}

	tr, err := ctrl.Submit(context.Background(), state, nil)
	if err == nil {
		t.Fatalf("expected completer error")
	}
	if tr.Outcome != flow.OutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", tr.Outcome)
	}
	if diff := cmp.Diff(state, tr.State); diff != "" {
		t.Fatalf("state not retained (-want +got):\n%s", diff)
	}
}

func TestController_CompleterFieldErrorsReject(t *testing.T) {
	completer := &countingCompleter{err: validation.Errors{"selfieFile": {"Upload failed"}}}
	ctrl := newController(t, completer)
	state := flow.State{Flow: "profile", Step: 3, Record: flow.Record{}}

	tr, err := ctrl.Submit(context.Background(), state, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Outcome != flow.OutcomeRejected || tr.Errors.First("selfieFile") != "Upload failed" {
		t.Fatalf("unexpected transition %+v", tr)
	}
}

func TestController_UnknownFlow(t *testing.T) {
	ctrl := newController(t, &countingCompleter{})
	if _, err := ctrl.Start("missing"); !errors.Is(err, flow.ErrUnknownFlow) {
		t.Fatalf("expected ErrUnknownFlow, got %v", err)
	}
	if _, err := ctrl.Back(flow.State{Flow: "missing", Step: 2}); !errors.Is(err, flow.ErrUnknownFlow) {
		t.Fatalf("expected ErrUnknownFlow, got %v", err)
	}
}

func TestDefinitionValidate(t *testing.T) {
	def := profileDefinition()
	if err := def.Validate(); err != nil {
		t.Fatalf("profile definition invalid: %v", err)
	}

	dup := profileDefinition()
	dup.Steps[1].Fields = append(dup.Steps[1].Fields, model.Field{Name: "country"})
	if err := dup.Validate(); err == nil {
		t.Fatalf("expected duplicate field error")
	}

	cross := profileDefinition()
	cross.Steps[1].Fields = append(cross.Steps[1].Fields, model.Field{
		Name:        "confirmCountry",
		Validations: []model.ValidationRule{rule(model.ValidationRuleMatches, "field", "country")},
	})
	if err := cross.Validate(); err == nil {
		t.Fatalf("expected cross-step reference error")
	}
}

func TestDefinitionFormModel(t *testing.T) {
	form, err := profileDefinition().FormModel(2)
	if err != nil {
		t.Fatal(err)
	}
	if form.ID != "profile.professional" || form.Metadata["step"] != "2" || form.Metadata["steps"] != "3" {
		t.Fatalf("unexpected form model: %+v", form)
	}
	if _, err := profileDefinition().FormModel(0); !errors.Is(err, flow.ErrStepOutOfRange) {
		t.Fatalf("expected ErrStepOutOfRange, got %v", err)
	}
}

func TestDefinitionRedact(t *testing.T) {
	def := flow.Definition{
		ID: "login",
		Steps: []flow.Step{{
			ID: "credentials",
			Fields: []model.Field{
				{Name: "email", Type: model.FieldTypeEmail},
				{Name: "password", Type: model.FieldTypePassword},
			},
		}},
	}
	record := flow.Record{"email": "ada@example.com", "password": "Abcdefg1!", "extra": "kept"}

	got := def.Redact(record)
	want := flow.Record{"email": "ada@example.com", "extra": "kept"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("redacted record mismatch (-want +got):\n%s", diff)
	}
	if record["password"] == "" {
		t.Fatalf("expected the input record to be left alone")
	}
}

func TestRegistry(t *testing.T) {
	registry := flow.NewRegistry()
	registry.MustRegister(profileDefinition())
	if err := registry.Register(profileDefinition()); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if diff := cmp.Diff([]string{"profile"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
