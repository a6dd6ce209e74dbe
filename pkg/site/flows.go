package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-vortex/pkg/auth"
	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/model"
	"github.com/goliatone/go-vortex/pkg/render"
)

// Flow definition metadata read by the HTML pages.
const (
	metaRedirect    = "redirect"
	metaRequires    = "requires"
	metaEntry       = "entry"
	metaResend      = "resend"
	metaSwitchText  = "switchText"
	metaSwitchLabel = "switchLabel"
	metaSwitchPath  = "switchPath"

	requiresChallenge = "challenge"
	requiresSession   = "session"
)

const (
	msgSubmitFailed = "Something went wrong, please try again"
	msgCodeResent   = "A new code has been sent"
	maxFlowBody     = 4 * auth.MaxUploadBytes
)

// flowPage serves GET and POST for one flow at its definition path. The
// visitor's flow state lives server side, keyed by the visitor cookie.
func (s *Site) flowPage(flowID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := s.flows.Definition(flowID)
		if err != nil {
			s.handleNotFound(w, r)
			return
		}
		vid := s.visitors.identify(w, r, s.secureCookies)

		ctx, ok := s.flowContext(r.Context(), def, vid)
		if !ok {
			http.Redirect(w, r, entryOf(def), http.StatusSeeOther)
			return
		}
		r = r.WithContext(ctx)

		state := s.currentState(vid, def)
		if r.Method == http.MethodPost {
			s.submitFlow(w, r, def, vid, state)
			return
		}

		view := stepView{}
		if r.URL.Query().Get("resent") != "" {
			view.Notice = msgCodeResent
		}
		s.renderStep(w, r, http.StatusOK, def, vid, state, view)
	}
}

// flowContext checks the flow's entry requirement and attaches what its
// completer needs. ok is false when the visitor has to start elsewhere.
func (s *Site) flowContext(ctx context.Context, def flow.Definition, vid string) (context.Context, bool) {
	switch def.Metadata[metaRequires] {
	case requiresChallenge:
		challenge, _ := s.visitors.challenge(vid)
		if challenge == "" {
			return ctx, false
		}
		return auth.WithChallenge(ctx, challenge), true
	case requiresSession:
		if _, ok := auth.SessionFromContext(ctx); !ok && s.requireSession {
			return ctx, false
		}
	}
	return ctx, true
}

func entryOf(def flow.Definition) string {
	if entry := def.Metadata[metaEntry]; entry != "" {
		return entry
	}
	return "/"
}

func (s *Site) currentState(vid string, def flow.Definition) flow.State {
	state, ok := s.visitors.flowState(vid, def.ID)
	if !ok || state.Done {
		state = flow.Start(def)
	}
	return state
}

// stepView is the per-request feedback a rendered step carries.
type stepView struct {
	Values     map[string]string
	Errors     map[string][]string
	FormErrors []string
	Notice     string
}

func (s *Site) renderStep(w http.ResponseWriter, r *http.Request, status int, def flow.Definition, vid string, state flow.State, view stepView) {
	form, err := def.FormModel(state.Step)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := render.RenderOptions{
		Action:     def.Path,
		Values:     state.Record.Merge(view.Values),
		Errors:     view.Errors,
		FormErrors: view.FormErrors,
		Progress:   render.ProgressFromForm(form),
	}
	markup, _, err := s.forms.Render(r.Context(), s.formRenderer, form, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := map[string]any{
		"form":         string(markup),
		"action":       def.Path,
		"notice":       view.Notice,
		"resend":       def.Metadata[metaResend] == "true",
		"switch_text":  def.Metadata[metaSwitchText],
		"switch_label": def.Metadata[metaSwitchLabel],
		"switch_path":  def.Metadata[metaSwitchPath],
	}
	if def.Metadata[metaRequires] == requiresChallenge {
		_, email := s.visitors.challenge(vid)
		data["email"] = email
	}
	s.renderPage(w, r, status, page{Shell: shellAuth, Title: def.Title, Name: "flow", Data: data})
}

func (s *Site) submitFlow(w http.ResponseWriter, r *http.Request, def flow.Definition, vid string, state flow.State) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFlowBody)
	if err := parseFlowForm(r); err != nil {
		code := http.StatusBadRequest
		if bodyTooLarge(err) {
			code = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), code)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	log := s.logger.With(zap.String("flow", def.ID), zap.Int("step", state.Step))

	switch r.PostForm.Get(render.HiddenAction) {
	case render.ActionBack:
		prev, err := s.flows.Back(state)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.visitors.setFlowState(vid, prev)
		http.Redirect(w, r, def.Path, http.StatusSeeOther)
		return
	case render.ActionResend:
		s.resendCode(w, r, def, vid, state)
		return
	}

	// A step number that no longer matches the stored state comes from a
	// stale page (another tab, the browser back button). Show the current
	// step instead of applying the input to the wrong one.
	if posted := r.PostForm.Get(render.HiddenStep); posted != "" {
		if n, err := strconv.Atoi(posted); err != nil || n != state.Step {
			log.Debug("stale step submitted", zap.String("posted", posted))
			http.Redirect(w, r, def.Path, http.StatusSeeOther)
			return
		}
	}

	step, _ := def.StepAt(state.Step)
	input, err := s.collectInput(r, step.Fields, state.Record)
	if err != nil {
		log.Warn("upload failed", zap.Error(err))
		code := http.StatusBadRequest
		var status StatusError
		if errors.As(err, &status) {
			code = status.StatusCode()
		}
		s.renderStep(w, r, code, def, vid, state, stepView{FormErrors: []string{err.Error()}})
		return
	}

	tr, err := s.flows.Submit(r.Context(), state, input)
	if err != nil {
		if tr.Outcome == flow.OutcomeFailed {
			log.Error("flow completion failed", zap.Error(err))
			s.visitors.setFlowState(vid, tr.State)
			s.renderStep(w, r, http.StatusInternalServerError, def, vid, tr.State, stepView{
				Values:     input,
				FormErrors: []string{msgSubmitFailed},
			})
			return
		}
		log.Debug("flow restarted", zap.Error(err))
		s.visitors.clearFlow(vid, def.ID)
		http.Redirect(w, r, def.Path, http.StatusSeeOther)
		return
	}

	switch tr.Outcome {
	case flow.OutcomeRejected:
		s.visitors.setFlowState(vid, tr.State)
		s.renderStep(w, r, http.StatusUnprocessableEntity, def, vid, tr.State, stepView{
			Values: input,
			Errors: tr.Errors,
		})
	case flow.OutcomeAdvanced:
		s.visitors.setFlowState(vid, tr.State)
		http.Redirect(w, r, def.Path, http.StatusSeeOther)
	case flow.OutcomeCompleted:
		s.visitors.clearFlow(vid, def.ID)
		s.applyCompletion(w, vid, tr.Completion)
		http.Redirect(w, r, completionTarget(def, tr.Completion), http.StatusSeeOther)
	default:
		s.fail(w, r, fmt.Errorf("site: unexpected outcome %q", tr.Outcome))
	}
}

// applyCompletion keeps what a completer handed back: an opened two-factor
// challenge, or a signed session token.
func (s *Site) applyCompletion(w http.ResponseWriter, vid string, done flow.Completion) {
	if challenge := done.Data["challenge"]; challenge != "" {
		s.visitors.setChallenge(vid, challenge, done.Data["email"])
	}
	if token := done.Data["token"]; token != "" {
		s.visitors.setChallenge(vid, "", "")
		setSessionCookie(w, token, s.sessionTTL(), s.secureCookies)
	}
}

func (s *Site) sessionTTL() time.Duration {
	if s.sessions != nil {
		return s.sessions.TTL()
	}
	return 0
}

func completionTarget(def flow.Definition, done flow.Completion) string {
	if done.Redirect != "" {
		return done.Redirect
	}
	if target := def.Metadata[metaRedirect]; target != "" {
		return target
	}
	return "/"
}

func (s *Site) resendCode(w http.ResponseWriter, r *http.Request, def flow.Definition, vid string, state flow.State) {
	challenge, _ := auth.ChallengeFromContext(r.Context())
	if def.Metadata[metaResend] != "true" || challenge == "" {
		http.Redirect(w, r, def.Path, http.StatusSeeOther)
		return
	}
	if _, err := s.twoFactor.Resend(challenge); err != nil {
		if errors.Is(err, auth.ErrChallengeNotFound) {
			s.visitors.setChallenge(vid, "", "")
			http.Redirect(w, r, entryOf(def), http.StatusSeeOther)
			return
		}
		s.renderStep(w, r, http.StatusInternalServerError, def, vid, state, stepView{FormErrors: []string{msgSubmitFailed}})
		return
	}
	s.logger.Debug("two factor code resent", zap.String("flow", def.ID))
	http.Redirect(w, r, def.Path+"?resent=1", http.StatusSeeOther)
}

func parseFlowForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(auth.MaxUploadBytes)
	}
	return r.ParseForm()
}

// collectInput reads the step's fields from the posted form. Files are
// handed to the upload store and replaced by their reference; a file field
// left empty keeps the reference already in the record.
func (s *Site) collectInput(r *http.Request, fields []model.Field, record flow.Record) (map[string]string, error) {
	input := make(map[string]string, len(fields))
	for _, field := range fields {
		if field.Type != model.FieldTypeFile {
			input[field.Name] = r.PostForm.Get(field.Name)
			continue
		}
		input[field.Name] = record[field.Name]
		if r.MultipartForm == nil {
			continue
		}
		headers := r.MultipartForm.File[field.Name]
		if len(headers) == 0 || headers[0].Size == 0 {
			continue
		}
		header := headers[0]
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("could not read %s", labelOf(field))
		}
		upload, err := s.uploads.Put(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
		_ = file.Close()
		if errors.Is(err, auth.ErrUploadTooLarge) {
			return nil, StatusError{
				Code: http.StatusRequestEntityTooLarge,
				Err:  fmt.Errorf("%s must be %d MB or smaller", labelOf(field), auth.MaxUploadBytes>>20),
			}
		}
		if err != nil {
			return nil, fmt.Errorf("could not store %s", labelOf(field))
		}
		input[field.Name] = upload.Ref
	}
	return input, nil
}

func labelOf(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return model.FieldLabel(field.Name)
}
