package server

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"evsim/internal"
	"evsim/internal/config"
)

const stateEndpoint = "/api/state"

// Api read-only HTTP surface exposing the same document as DUMP_STATE.
type Api struct {
	conf          *config.Config
	httpServer    *http.Server
	logger        internal.LogHandler
	stateProvider func() ([]byte, error)
}

func NewServerApi(conf *config.Config, logger internal.LogHandler) *Api {
	server := Api{
		conf:   conf,
		logger: logger,
	}
	router := httprouter.New()
	router.GET(stateEndpoint, server.handleState)
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Api.BindIP, conf.Api.Port),
		Handler: router,
	}
	return &server
}

func (s *Api) SetStateProvider(provider func() ([]byte, error)) {
	s.stateProvider = provider
}

func (s *Api) Start() error {
	s.logger.Debug(fmt.Sprintf("starting api server on %s", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Api) handleState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.stateProvider == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	data, err := s.stateProvider()
	if err != nil {
		s.logger.Error("api: state dump", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	if _, err = w.Write(data); err != nil {
		s.logger.Error("api: writing response", err)
	}
}
