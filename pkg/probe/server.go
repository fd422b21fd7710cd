package probe

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"fantasy_trades/pkg/httpx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const defaultCheckTimeout = 2 * time.Second

type Options struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Check reports whether a dependency is usable.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

type state struct {
	Options
	Failed string `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

type Server struct {
	listenAddress string
	options       Options
	state         []byte
	checks        []Check
	checkTimeout  time.Duration
}

func NewServer(
	listenAddress string,
	options Options,
	checks ...Check,
) Server {
	stateJSON, _ := json.Marshal(state{Options: options}) //nolint:errcheck,errchkjson

	return Server{
		listenAddress: listenAddress,
		options:       options,
		state:         stateJSON,
		checks:        checks,
		checkTimeout:  defaultCheckTimeout,
	}
}

func (s Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handlerHealthz)
	mux.HandleFunc("/ready", s.handlerReady)

	return mux
}

func (s Server) Run(ctx context.Context) error {
	return httpx.Server{
		Name:          "probe",
		ListenAddress: s.listenAddress,
		Handler:       s.Handler(),
	}.Run(ctx)
}

func (s Server) handlerHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write(s.state) //nolint:errcheck
}

// handlerReady answers 503 naming the first failing check.
func (s Server) handlerReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.checkTimeout)
	defer cancel()

	for _, c := range s.checks {
		if err := c.Fn(ctx); err != nil {
			body, _ := json.Marshal(state{ //nolint:errcheck,errchkjson
				Options: s.options,
				Failed:  c.Name,
				Error:   err.Error(),
			})

			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write(body) //nolint:errcheck

			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write(s.state) //nolint:errcheck
}
