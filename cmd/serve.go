package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/chordforge/chordforge/cache"
	"github.com/chordforge/chordforge/model"
	"github.com/chordforge/chordforge/processor"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var serveAddr string

// Detection results survive across requests for the same file bytes.
var serveCache = cache.New()

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves chord analysis over HTTP",
	Long:  `Serves chord analysis over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "could not read request body")
		return
	}

	var input model.AnalyzeRequestBody
	if err := json.Unmarshal(reqBody, &input); err != nil || input.Path == "" {
		writeError(w, 400, "body must be {\"path\": \"...\"}")
		return
	}

	proc := processor.NewWithCache(serveCache)
	if err := proc.Load(input.Path); err != nil {
		writeError(w, 422, err.Error())
		return
	}

	res := model.AnalyzeResponse{
		File:   input.Path,
		Chords: proc.ChordInfos(),
	}
	if key := proc.DetectKey(); key != nil {
		res.Key = key.Name()
	}
	for _, prog := range proc.AnalyzeProgression() {
		res.Progressions = append(res.Progressions, model.ProgressionInfo{
			Name:         prog.Name,
			Confidence:   prog.Confidence,
			ChordIndices: prog.ChordIndices,
		})
	}
	json.NewEncoder(w).Encode(res)
}

func HandleTransform(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "could not read request body")
		return
	}

	var input model.TransformRequestBody
	if err := json.Unmarshal(reqBody, &input); err != nil || input.Path == "" {
		writeError(w, 400, "could not unmarshal request body")
		return
	}

	mode, err := parseMode(orDefault(input.Mode, "standard"))
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	proc := processor.NewWithCache(serveCache)
	if err := proc.Load(input.Path); err != nil {
		writeError(w, 422, err.Error())
		return
	}

	var skipped []int
	if mode == model.SwitchTonality {
		for _, index := range input.Indices {
			if err := proc.SwitchTonality(index); err != nil {
				skipped = append(skipped, index)
			}
		}
	} else {
		if len(input.Targets) != len(input.Indices) {
			writeError(w, 400, "indices and targets must have the same length")
			return
		}
		opts := model.NewTransformationOptions()
		opts.Type = mode
		opts.Inversion = input.Inversion
		if input.Percentage != 0 {
			opts.Percentage = input.Percentage
		}
		if input.UseVoiceLeading != nil {
			opts.UseVoiceLeading = *input.UseVoiceLeading
		}

		skipped, err = proc.Transform(input.Indices, input.Targets, opts)
		if err != nil {
			writeError(w, 422, err.Error())
			return
		}
	}

	res := model.TransformResponse{Chords: proc.ChordInfos(), Skipped: skipped}
	if input.OutPath != "" {
		if err := proc.Save(input.OutPath); err != nil {
			writeError(w, 500, err.Error())
			return
		}
		res.Saved = input.OutPath
	}
	json.NewEncoder(w).Encode(res)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/analyze", HandleAnalyze).Methods("POST")
	router.HandleFunc("/transform", HandleTransform).Methods("POST")

	handler := cors.Default().Handler(router)
	fmt.Printf("Listening on %v\n", serveAddr)
	log.Fatal(http.ListenAndServe(serveAddr, handler))
}
