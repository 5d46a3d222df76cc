package web

import (
	"net/http"
	"net/url"

	"github.com/roach88/precario/internal/catalog"
)

type queuesView struct {
	Queues []catalog.Queue
}

func (s *Server) handleQueues(w http.ResponseWriter, r *http.Request) {
	queues, err := s.svc.Queues(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "queues", page{Title: "Queues", Nav: "queues", Data: queuesView{Queues: queues}})
}

type queueFormView struct {
	Action string
	ID     string
	Input  catalog.QueueInput
	Errors map[string]string
}

func (s *Server) renderQueueForm(w http.ResponseWriter, r *http.Request, status int, id string, in catalog.QueueInput, errs map[string]string) {
	v := queueFormView{Action: "/queues", ID: id, Input: in, Errors: errs}
	title := "New queue"
	if id != "" {
		v.Action = "/queues/" + url.PathEscape(id)
		title = "Edit queue"
	}
	s.render(w, r, status, "queue_form", page{Title: title, Nav: "queues", Data: v})
}

func (s *Server) handleQueueNew(w http.ResponseWriter, r *http.Request) {
	s.renderQueueForm(w, r, http.StatusOK, "", catalog.DefaultQueueInput(), nil)
}

func (s *Server) handleQueueEdit(w http.ResponseWriter, r *http.Request) {
	q, err := s.svc.Queue(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderQueueForm(w, r, http.StatusOK, q.ID, q.Input(), nil)
}

func (s *Server) handleQueueCreate(w http.ResponseWriter, r *http.Request) {
	s.saveQueue(w, r, "")
}

func (s *Server) handleQueueUpdate(w http.ResponseWriter, r *http.Request) {
	s.saveQueue(w, r, r.PathValue("id"))
}

// saveQueue creates (empty id) or updates a queue from the posted form.
func (s *Server) saveQueue(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, err)
		return
	}
	in, formErrs := queueFromForm(r.PostForm)
	if formErrs != nil {
		s.renderQueueForm(w, r, http.StatusUnprocessableEntity, id, in, formErrs)
		return
	}

	var err error
	if id == "" {
		_, err = s.svc.CreateQueue(r.Context(), in)
	} else {
		_, err = s.svc.UpdateQueue(r.Context(), id, in)
	}
	if err != nil {
		if fields := validationFields(err); fields != nil {
			s.renderQueueForm(w, r, http.StatusUnprocessableEntity, id, in, fields)
			return
		}
		s.renderError(w, r, err)
		return
	}
	redirect(w, r, "/queues")
}

func (s *Server) handleQueueDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteQueue(r.Context(), r.PathValue("id")); err != nil {
		s.renderError(w, r, err)
		return
	}
	redirect(w, r, "/queues")
}
