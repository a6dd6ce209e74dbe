package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/goliatone/go-vortex/pkg/auth"
	"github.com/goliatone/go-vortex/pkg/chat"
	"github.com/goliatone/go-vortex/pkg/flow"
	"github.com/goliatone/go-vortex/pkg/model"
	"github.com/goliatone/go-vortex/pkg/validation"
)

const maxJSONBody = 1 << 20

var errUnknownInstance = errors.New("unknown or expired flow instance")

type validateRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type submitRequest struct {
	Instance  string            `json:"instance"`
	Values    map[string]string `json:"values"`
	Challenge string            `json:"challenge"`
}

type backRequest struct {
	Instance string `json:"instance"`
}

// transitionResponse is a transition plus the instance that holds the state
// the next call continues from.
type transitionResponse struct {
	Instance string `json:"instance,omitempty"`
	flow.Transition
}

type backResponse struct {
	Instance string     `json:"instance"`
	State    flow.State `json:"state"`
}

type chatRequest struct {
	Conversation string `json:"conversation"`
	Message      string `json:"message"`
}

type chatResponse struct {
	Conversation string         `json:"conversation"`
	Messages     []chat.Message `json:"messages"`
}

type postRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

type uploadResponse struct {
	Ref         string `json:"ref"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON body: %w", err)}
	}
	return nil
}

func (s *Site) definitionOf(r *http.Request) (flow.Definition, error) {
	def, err := s.flows.Definition(mux.Vars(r)["flow"])
	return def, classify(err)
}

func (s *Site) apiListFlows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"flows": s.flows.Registry().List()})
}

func (s *Site) apiGetFlow(w http.ResponseWriter, r *http.Request) {
	def, err := s.definitionOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// apiValidate checks one field as the visitor types. Cross-field rules are
// left for submission.
func (s *Site) apiValidate(w http.ResponseWriter, r *http.Request) {
	def, err := s.definitionOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req validateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	field, ok := def.Field(req.Field)
	if !ok {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("flow %s has no field %q", def.ID, req.Field)})
		return
	}
	result := validation.ValidateField(field, req.Value, s.flows.Env())
	if field.Type == model.FieldTypePassword {
		result.Value = ""
	}
	writeJSON(w, http.StatusOK, result)
}

// instanceState loads the state instance holds for def. Clients only ever
// name an instance; step and record stay on the server.
func (s *Site) instanceState(def flow.Definition, instance string) (flow.State, error) {
	state, ok := s.instances.lookup(instance, def.ID)
	if !ok {
		return flow.State{}, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("%w: %s", errUnknownInstance, def.ID)}
	}
	return state, nil
}

// apiSubmit applies values to the state held by the request's instance. A
// missing instance starts the flow and opens one.
func (s *Site) apiSubmit(w http.ResponseWriter, r *http.Request) {
	def, err := s.definitionOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	instance := req.Instance
	state := flow.Start(def)
	if instance != "" {
		if state, err = s.instanceState(def, instance); err != nil {
			writeError(w, err)
			return
		}
	}

	ctx := r.Context()
	if req.Challenge != "" {
		ctx = auth.WithChallenge(ctx, req.Challenge)
	}
	tr, err := s.flows.Submit(ctx, state, req.Values)
	if err != nil {
		if tr.Outcome == flow.OutcomeFailed {
			s.logger.Error("flow completion failed", zap.String("flow", def.ID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgSubmitFailed})
			return
		}
		writeError(w, classify(err))
		return
	}

	code := http.StatusOK
	switch tr.Outcome {
	case flow.OutcomeCompleted:
		if instance != "" {
			s.instances.forget(instance)
		}
		instance = ""
		tr.Record = def.Redact(tr.Record)
		tr.Completion.Redirect = completionTarget(def, tr.Completion)
	default:
		if tr.Outcome == flow.OutcomeRejected {
			code = http.StatusUnprocessableEntity
		}
		if instance == "" {
			instance = s.instances.open(tr.State)
		} else {
			s.instances.setFlowState(instance, tr.State)
		}
	}
	tr.State.Record = def.Redact(tr.State.Record)
	writeJSON(w, code, transitionResponse{Instance: instance, Transition: tr})
}

func (s *Site) apiBack(w http.ResponseWriter, r *http.Request) {
	def, err := s.definitionOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req backRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	state, err := s.instanceState(def, req.Instance)
	if err != nil {
		writeError(w, err)
		return
	}
	prev, err := s.flows.Back(state)
	if err != nil {
		writeError(w, classify(err))
		return
	}
	s.instances.setFlowState(req.Instance, prev)
	prev.Record = def.Redact(prev.Record)
	writeJSON(w, http.StatusOK, backResponse{Instance: req.Instance, State: prev})
}

func (s *Site) apiDashboard(w http.ResponseWriter, r *http.Request) {
	widgets, err := s.widgets.Build(s.fixtures, s.formatter)
	if err != nil {
		s.logger.Error("dashboard widgets failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"widgets": widgets})
}

// apiChat sends one message. An empty or expired conversation id opens a new
// conversation, whose id is returned.
func (s *Site) apiChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	conversation := req.Conversation
	if conversation != "" {
		if _, err := s.assistant.History(conversation); err != nil {
			conversation = ""
		}
	}
	if conversation == "" {
		conversation = s.assistant.Open()
	}
	added, err := s.assistant.Send(r.Context(), conversation, req.Message)
	if err != nil {
		writeError(w, classify(err))
		return
	}
	if added == nil {
		added = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, chatResponse{Conversation: conversation, Messages: added})
}

func (s *Site) apiListPosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"posts": s.board.List()})
}

func (s *Site) apiPublishPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	author := req.Author
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		author = session.Email
	}
	post, err := s.board.Publish(r.Context(), author, req.Body)
	if err != nil {
		writeError(w, classify(err))
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// apiUpload stores one identity document. The returned ref is what a flow
// submission carries in the document field.
func (s *Site) apiUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, auth.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(auth.MaxUploadBytes); err != nil {
		code := http.StatusBadRequest
		if bodyTooLarge(err) {
			code = http.StatusRequestEntityTooLarge
		}
		writeError(w, StatusError{Code: code, Err: fmt.Errorf("invalid upload: %w", err)})
		return
	}
	// r is a copy made by the router, so the server never sees this form.
	defer r.MultipartForm.RemoveAll()
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = errors.New("file is required")
		}
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}
	defer file.Close()

	upload, err := s.uploads.Put(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.logger.Warn("upload failed", zap.Error(err))
		writeError(w, classify(err))
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{
		Ref:         upload.Ref,
		Name:        upload.Name,
		ContentType: upload.ContentType,
		Size:        upload.Size,
	})
}
