package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/TheCacophonyProject/track-heatmap/output"
	"github.com/TheCacophonyProject/track-heatmap/throttle"
)

var artifactTypes = map[string]string{
	output.SnapshotFile: "image/png",
	output.HeatmapFile:  "image/png",
	output.OverlayFile:  "image/png",
	output.ChartFile:    "text/html; charset=utf-8",
	output.PointsFile:   "application/json",
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiServer struct {
	generator throttle.Generator
	out       *output.Writer
}

func newRouter(generator throttle.Generator, out *output.Writer) *mux.Router {
	api := &apiServer{
		generator: generator,
		out:       out,
	}
	r := mux.NewRouter()
	r.HandleFunc("/api/generate", api.handleGenerate).Methods("POST")
	r.HandleFunc("/api/artifacts/{name}", api.handleArtifact).Methods("GET")
	return r
}

func newHTTPServer(addr string, generator throttle.Generator, out *output.Writer) *http.Server {
	return &http.Server{
		Handler:      newRouter(generator, out),
		Addr:         addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
}

func (api *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	res, err := api.generator.Generate(r.Context())
	if errors.Is(err, throttle.ErrThrottled) {
		sendErrorResponse(w, "throttled", err.Error(), http.StatusTooManyRequests)
		return
	} else if err != nil {
		sendErrorResponse(w, "generate_failed", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (api *apiServer) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	contentType, ok := artifactTypes[name]
	if !ok {
		sendErrorResponse(w, "unknown_artifact", "no artifact called "+name, http.StatusNotFound)
		return
	}

	f, err := os.Open(api.out.Path(name))
	if os.IsNotExist(err) {
		sendErrorResponse(w, "not_generated", name+" hasn't been generated yet", http.StatusNotFound)
		return
	} else if err != nil {
		log.Printf("reading %s failed: %v", name, err)
		sendErrorResponse(w, "read_failed", err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		sendErrorResponse(w, "read_failed", err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func sendErrorResponse(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{
		Code:    code,
		Message: message,
	})
}
