package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/shhawkins/chord-wheel-writer/constants"
	"github.com/shhawkins/chord-wheel-writer/midifile"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/registry"
	"github.com/shhawkins/chord-wheel-writer/render"
	"github.com/shhawkins/chord-wheel-writer/songfile"
	"github.com/shhawkins/chord-wheel-writer/theory"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the wheel and preview-render API",
	Long:  `Serves the wheel and preview-render API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var errSuperseded = errors.New("superseded by a newer preview request")

type server struct {
	renderer *render.Renderer

	// preview renders arrive on every editor keystroke; only the last
	// request within the window is worth rendering
	mu        sync.Mutex
	debounced func(func())
	pending   *previewJob
}

type previewJob struct {
	body model.RenderRequestBody
	done chan previewResult
}

type previewResult struct {
	wav []byte
	err error
	// set when the render substituted voices (failed instrument load,
	// unknown chord quality) but still produced audio
	warn error
}

func newServer() *server {
	return &server{
		renderer:  render.NewRenderer(registry.New()),
		debounced: debounce.New(150 * time.Millisecond),
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: err.Error()})
}

func (s *server) handleWheel(w http.ResponseWriter, r *http.Request) {
	var out []model.WheelResponse
	for pos := 0; pos < theory.NumPositions; pos++ {
		chords := theory.ChordsAtPosition(pos)
		spell := theory.SpellingForKey(chords.Major)
		out = append(out, model.WheelResponse{
			Position:   pos,
			Major:      theory.NoteName(chords.Major, spell),
			Minor:      theory.NoteName(chords.Minor, spell) + "m",
			Diminished: theory.NoteName(chords.Diminished, spell) + "dim",
		})
	}
	json.NewEncoder(w).Encode(out)
}

func (s *server) handleKey(w http.ResponseWriter, r *http.Request) {
	root, err := theory.ParsePitchClass(mux.Vars(r)["key"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var entries []model.MembershipEntry
	for _, m := range theory.DiatonicMembership(root) {
		entries = append(entries, model.MembershipEntry{
			Numeral:  m.Numeral,
			Position: m.Position,
			Ring:     string(m.Ring),
			Symbol:   theory.Symbol(m.Root, m.Quality, theory.SpellingForKey(root)),
		})
	}
	json.NewEncoder(w).Encode(entries)
}

func (s *server) decodeSong(r *http.Request) (*model.RenderRequestBody, error) {
	var body model.RenderRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding request body: %w", err)
	}
	if body.Settings == nil {
		settings := model.DefaultEffectSettings()
		body.Settings = &settings
	}
	return &body, nil
}

// handleRender renders the posted song to WAV. Rapid-fire requests are
// debounced: each request parks as the pending job and only the job
// still pending when the window closes actually renders; superseded
// jobs get 409 so the client knows to keep its previous preview.
func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := s.decodeSong(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	job := &previewJob{body: *body, done: make(chan previewResult, 1)}

	s.mu.Lock()
	if prev := s.pending; prev != nil {
		prev.done <- previewResult{err: errSuperseded}
	}
	s.pending = job
	s.mu.Unlock()

	s.debounced(func() {
		s.mu.Lock()
		current := s.pending
		s.pending = nil
		s.mu.Unlock()
		if current == nil {
			return
		}
		current.done <- s.renderPreview(r, current.body)
	})

	res := <-job.done
	if res.err != nil {
		status := http.StatusInternalServerError
		if errors.Is(res.err, errSuperseded) {
			status = http.StatusConflict
		}
		writeError(w, status, res.err)
		return
	}

	if res.warn != nil {
		w.Header().Set("X-Render-Warning", res.warn.Error())
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Write(res.wav)
}

func (s *server) renderPreview(r *http.Request, body model.RenderRequestBody) previewResult {
	samples, err := s.renderer.Render(r.Context(), &body.Song, *body.Settings, body.Instrument)
	if samples == nil {
		return previewResult{err: err}
	}

	var buf bytes.Buffer
	if werr := render.EncodeWAV(&buf, samples, constants.SampleRate, constants.NumChannels); werr != nil {
		return previewResult{err: werr}
	}
	return previewResult{wav: buf.Bytes(), warn: err}
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	body, err := s.decodeSong(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sm, err := midifile.Export(&body.Song)
	if sm == nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "audio/midi")
	if _, err := sm.WriteTo(w); err != nil {
		log.Printf("writing midi response: %v", err)
	}
}

func (s *server) handleSong(w http.ResponseWriter, r *http.Request) {
	var doc songfile.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	song, err := doc.Song()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	json.NewEncoder(w).Encode(song)
}

func (s *server) router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/wheel", s.handleWheel).Methods("GET")
	router.HandleFunc("/wheel/{key}", s.handleKey).Methods("GET")
	router.HandleFunc("/render", s.handleRender).Methods("POST")
	router.HandleFunc("/export", s.handleExport).Methods("POST")
	router.HandleFunc("/song", s.handleSong).Methods("POST")
	return cors.Default().Handler(router)
}

// NewAPIHandler builds the full route stack without binding a listener.
func NewAPIHandler() http.Handler {
	return newServer().router()
}

func serve() error {
	s := newServer()
	log.Printf("listening on %s", serveAddr)
	return http.ListenAndServe(serveAddr, s.router())
}
