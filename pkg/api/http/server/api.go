package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/voidshard/otto/pkg/api"
	"github.com/voidshard/otto/pkg/api/http/common"
	"github.com/voidshard/otto/pkg/structs"
)

const (
	wait = 30 * time.Second

	// uploads larger than this are rejected outright
	maxUploadBytes = 10 << 20
)

type Server struct {
	addr       string
	scriptsDir string
	debug      bool
	svc        api.API
	exit       chan os.Signal
	httpserver *http.Server
}

func (s *Server) ServeForever(svc api.API) error {
	s.svc = svc

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	router.HandleFunc(common.API_JOBS, s.Jobs).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc(common.API_CANCEL, s.CancelJobs).Methods(http.MethodPatch)

	if s.debug {
		log.Println("Debug enabled, adding per-request logging middleware")
		router.Use(loggingMiddleware)
	}

	s.httpserver = &http.Server{
		Handler:      router,
		Addr:         s.addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		log.Println("Listening on", s.httpserver.Addr)
		if err := s.httpserver.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	signal.Notify(s.exit, os.Interrupt)
	defer s.Close()
	<-s.exit

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	s.httpserver.Shutdown(ctx)
	os.Exit(0)
	return nil
}

func (s *Server) Jobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getJobs(w, r)
	case http.MethodPost:
		s.createJob(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createJob accepts either a multipart script upload or a JSON JobSpec
// naming a script already on disk.
func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var spec *structs.JobSpec
	var err error

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		spec, err = s.saveUpload(w, r)
	} else {
		spec = &structs.JobSpec{}
		err = unmarshalJson(w, r, spec)
	}
	if err != nil {
		return
	}

	resp, err := s.svc.CreateJob(spec)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// saveUpload writes an uploaded script into the server's scripts dir under a
// fresh name; the caller's filename is only used for its extension check.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (*structs.JobSpec, error) {
	err := r.ParseMultipartForm(maxUploadBytes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, err
	}

	file, header, err := r.FormFile("script")
	if err != nil {
		http.Error(w, "no script file", http.StatusBadRequest)
		return nil, err
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".py") {
		http.Error(w, "only .py scripts are accepted", http.StatusBadRequest)
		return nil, fmt.Errorf("bad extension: %s", header.Filename)
	}

	path := filepath.Join(s.scriptsDir, uuid.NewString()+".py")
	dst, err := os.Create(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	return &structs.JobSpec{
		Name:       name,
		UserID:     r.FormValue("user_id"),
		ScriptPath: path,
	}, nil
}

func (s *Server) getJobs(w http.ResponseWriter, r *http.Request) {
	q := &structs.Query{}
	err := unmarshalQuery(w, r, q)
	if err != nil {
		return
	}

	items, err := s.svc.Jobs(q)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}
	if s.debug {
		log.Println(r.URL, "returned", len(items), "items")
	}

	err = json.NewEncoder(w).Encode(items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) CancelJobs(w http.ResponseWriter, r *http.Request) {
	ids := []string{}
	err := unmarshalJson(w, r, &ids)
	if err != nil {
		return
	}

	updated, err := s.svc.Cancel(ids)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(&common.UpdateResponse{Updated: updated})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) Close() error {
	s.exit <- os.Interrupt
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func NewServer(addr, scriptsDir string, debug bool) *Server {
	return &Server{
		addr:       addr,
		scriptsDir: scriptsDir,
		debug:      debug,
		exit:       make(chan os.Signal, 1),
	}
}
