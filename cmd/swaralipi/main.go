/*
 * Copyright (c) 2026 by the Swaralipi Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package main is the swaralipi command line: notation text in, IR JSON,
// MusicXML or Standard MIDI Files out.
package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"swaralipi/internal/config"
	"swaralipi/internal/crash"
	"swaralipi/internal/ir"
	"swaralipi/internal/log"
	"swaralipi/internal/musicxml"
	"swaralipi/internal/pitch"
	"swaralipi/internal/session"
	"swaralipi/internal/smf"
	"swaralipi/internal/structure"
	"swaralipi/internal/version"
)

var (
	outputFile string
	midiTPQ    int
	midiTempo  float64
	cfg        config.AppConfig
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	log.Init(log.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	defer crash.Recover("", nil)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "swaralipi",
	Short: "Convert letter notation to structured musical formats",
	Long: `swaralipi reads plain-text letter notation (sargam, western or numbered)
and converts it to structured formats.

Examples:
  swaralipi parse song.txt -o song.json
  swaralipi export-musicxml song.txt -o song.musicxml
  swaralipi import-musicxml score.musicxml -o score.json
  swaralipi export-midi score.musicxml -o score.mid --tpq 480`,
	Version: version.String(),
}

var parseCmd = &cobra.Command{
	Use:   "parse <input.txt>",
	Short: "Derive the IR from notation text and emit it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var validateCmd = &cobra.Command{
	Use:   "validate <input.json>",
	Short: "Check an IR JSON document against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var exportMusicXMLCmd = &cobra.Command{
	Use:   "export-musicxml <input.txt|input.json>",
	Short: "Write notation text or IR JSON as MusicXML",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportMusicXML,
}

var importMusicXMLCmd = &cobra.Command{
	Use:   "import-musicxml <input.musicxml>",
	Short: "Read MusicXML into IR JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportMusicXML,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

var exportMIDICmd = &cobra.Command{
	Use:   "export-midi <input.musicxml>",
	Short: "Convert MusicXML to a Standard MIDI File",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportMIDI,
}

func init() {
	for _, c := range []*cobra.Command{parseCmd, exportMusicXMLCmd, importMusicXMLCmd, exportMIDICmd} {
		c.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: input with new extension)")
	}
	exportMIDICmd.Flags().IntVar(&midiTPQ, "tpq", -1, "Ticks per quarter note (0 keeps the document's resolution)")
	exportMIDICmd.Flags().Float64Var(&midiTempo, "tempo", 0, "Tempo in beats per minute")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportMusicXMLCmd)
	rootCmd.AddCommand(importMusicXMLCmd)
	rootCmd.AddCommand(exportMIDICmd)
	rootCmd.AddCommand(versionCmd)
}

func outputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + defaultExt
}

func notationLanguage() pitch.Language {
	switch strings.ToLower(cfg.Notation.Language) {
	case "western":
		return pitch.LangWestern
	case "number":
		return pitch.LangNumber
	default:
		return pitch.LangSargam
	}
}

func exportLanguage() pitch.Language {
	switch strings.ToLower(cfg.Export.PitchLanguage) {
	case "western":
		return pitch.LangWestern
	case "number":
		return pitch.LangNumber
	case "":
		return ""
	default:
		return pitch.LangSargam
	}
}

// documentFromFile loads an IR document from notation text or IR JSON,
// keyed on the file extension.
func documentFromFile(input string) (ir.Document, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return ir.Document{}, err
	}
	if strings.EqualFold(filepath.Ext(input), ".json") {
		return ir.UnmarshalDocument(data)
	}
	opts := structure.Options{
		Language: notationLanguage(),
		Beats:    cfg.Notation.Beats,
		BeatType: cfg.Notation.BeatType,
	}
	s := session.New(string(data), opts)
	doc, diags := s.IRDocument()
	logger := log.WithComponent("cli")
	for _, d := range diags {
		logger.Warn("measure length mismatch", "detail", d.String())
	}
	return doc, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	doc, err := documentFromFile(args[0])
	if err != nil {
		return err
	}
	data, err := ir.MarshalDocument(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath(args[0], ".json"), data, 0o644)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := ir.ValidateJSON(data); err != nil {
		return err
	}
	fmt.Printf("%s: valid\n", args[0])
	return nil
}

func runExportMusicXML(cmd *cobra.Command, args []string) error {
	doc, err := documentFromFile(args[0])
	if err != nil {
		return err
	}
	xcfg := musicxml.ExportConfig{
		PitchLanguage:             exportLanguage(),
		ElideRedundantAccidentals: cfg.Export.ElideRedundantAccidentals,
		Software:                  "swaralipi " + version.Version,
	}
	var buf bytes.Buffer
	if err := musicxml.Export(&buf, doc, xcfg); err != nil {
		return err
	}
	return os.WriteFile(outputPath(args[0], ".musicxml"), buf.Bytes(), 0o644)
}

func runImportMusicXML(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	res, err := musicxml.Import(data)
	if err != nil {
		return err
	}
	logger := log.WithComponent("cli")
	for _, sk := range res.Skipped {
		logger.Warn("skipped element", "path", sk.Path, "reason", sk.Reason)
	}
	out, err := ir.MarshalDocument(res.Doc)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath(args[0], ".json"), out, 0o644)
}

func runExportMIDI(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	opts := smf.DefaultOptions()
	if cfg.MIDI.TPQ > math.MaxUint16 {
		return fmt.Errorf("config midi tpq %d out of range (max %d)", cfg.MIDI.TPQ, math.MaxUint16)
	}
	opts.TPQ = uint16(cfg.MIDI.TPQ)
	opts.Tempo = cfg.MIDI.Tempo
	if cfg.MIDI.Velocity > 0 && cfg.MIDI.Velocity < 128 {
		opts.Velocity = uint8(cfg.MIDI.Velocity)
	}
	if midiTPQ > math.MaxUint16 {
		return fmt.Errorf("tpq %d out of range (max %d)", midiTPQ, math.MaxUint16)
	}
	if midiTPQ >= 0 {
		opts.TPQ = uint16(midiTPQ)
	}
	if midiTempo > 0 {
		opts.Tempo = midiTempo
	}
	out, err := smf.Convert(data, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath(args[0], ".mid"), out, 0o644)
}
