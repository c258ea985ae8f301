// Command facade adds arbitrary payloads to PNG files (and PNG-backed
// ICO files) and extracts or detects them again, via trailing-data,
// tEXt/zTXt, and steganographic carriers. Grounded on the option
// surface of original_source/src/main.cpp's create/extract/detect
// subcommands, restructured around flag.FlagSet the way
// cmd/decoder/main.go uses flag.StringVar for its single-purpose CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"facade.dev/facade/ico"
	"facade.dev/facade/png"
	"facade.dev/facade/stego"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: facade <create|extract|detect> [flags]")
		os.Exit(2)
	}

	var code int
	switch os.Args[1] {
	case "create":
		code = runCreate(os.Args[2:])
	case "extract":
		code = runExtract(os.Args[2:])
	case "detect":
		code = runDetect(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q: expected create, extract, or detect\n", os.Args[1])
		code = 2
	}
	os.Exit(code)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs
}

// keywordFileFlag accumulates repeated "keyword=file" pairs, the Go
// stand-in for argparse's .nargs(2).append() used by
// --text-section-payload / --ztxt-section-payload.
type keywordFileFlag struct {
	entries []keywordFile
}

type keywordFile struct {
	Keyword, File string
}

func (f *keywordFileFlag) String() string {
	parts := make([]string, len(f.entries))
	for i, e := range f.entries {
		parts[i] = e.Keyword + "=" + e.File
	}
	return strings.Join(parts, ",")
}

func (f *keywordFileFlag) Set(value string) error {
	keyword, file, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected keyword=file, got %q", value)
	}
	f.entries = append(f.entries, keywordFile{Keyword: keyword, File: file})
	return nil
}

// payload wraps either a bare PNG or an ICO file carrying a PNG entry,
// the Go stand-in for the reference source's
// std::variant<PNGPayload, ICOPayload>.
type payload struct {
	image      *png.Image
	icon       *ico.Icon
	iconIndex  int
	sourcePath string
}

func openPayload(path string) (*payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &png.OpenFileFailure{Path: path, Err: err}
	}

	if img, err := png.Parse(data, true); err == nil {
		return &payload{image: img, sourcePath: path}, nil
	}

	icon, err := ico.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("not a PNG and not a parseable icon: %w", err)
	}

	for i := 0; i < icon.Size(); i++ {
		if kind, _ := icon.EntryType(i); kind == ico.EntryPNG {
			img, err := icon.PNGEntry(i)
			if err != nil {
				return nil, fmt.Errorf("icon entry %d is PNG-signed but failed to parse: %w", i, err)
			}
			return &payload{image: img, icon: icon, iconIndex: i, sourcePath: path}, nil
		}
	}

	return nil, fmt.Errorf("icon file %q has no PNG-backed entry", path)
}

func (p *payload) save(path string) error {
	if p.icon == nil {
		return os.WriteFile(path, p.image.Serialize(), 0o644)
	}

	header, err := p.icon.GetEntry(p.iconIndex)
	if err != nil {
		return err
	}
	if err := p.icon.SetPNGEntry(p.iconIndex, header.Header, p.image); err != nil {
		return err
	}
	data, err := p.icon.Serialize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func runCreate(args []string) int {
	fs := newFlagSet("create")
	input := fs.String("input", "", "the PNG (or PNG-backed ICO) file to add a payload to")
	output := fs.String("output", "", "the resulting file")
	trailingFile := fs.String("trailing-data-payload", "", "file whose bytes become the PNG's trailing data")
	stegoFile := fs.String("stego-payload", "", "file to hide via steganography")
	var textPayloads, ztextPayloads keywordFileFlag
	fs.Var(&textPayloads, "text-section-payload", "keyword=file pair for a tEXt payload chunk; may repeat")
	fs.Var(&ztextPayloads, "ztxt-section-payload", "keyword=file pair for a zTXt payload chunk; may repeat")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *input == "" || *output == "" {
		log.Error().Msg("--input and --output are required")
		return 1
	}
	if *trailingFile == "" && len(textPayloads.entries) == 0 && len(ztextPayloads.entries) == 0 && *stegoFile == "" {
		log.Error().Msg("no payload type specified")
		return 1
	}

	log.Info().Str("input", *input).Msg("parsing input file")
	p, err := openPayload(*input)
	if err != nil {
		log.Error().Err(err).Msg("failed to load input file")
		return 2
	}

	if *trailingFile != "" {
		data, err := os.ReadFile(*trailingFile)
		if err != nil {
			log.Error().Err(err).Msg("failed to read trailing data payload")
			return 3
		}
		p.image.SetTrailingData(data)
		log.Info().Msg("trailing data payload set")
	}

	for _, entry := range textPayloads.entries {
		data, err := os.ReadFile(entry.File)
		if err != nil {
			log.Error().Err(err).Str("keyword", entry.Keyword).Msg("failed to read tEXt payload")
			return 4
		}
		if err := p.image.AddTextPayload(entry.Keyword, data); err != nil {
			log.Error().Err(err).Str("keyword", entry.Keyword).Msg("failed to add tEXt payload")
			return 5
		}
	}

	for _, entry := range ztextPayloads.entries {
		data, err := os.ReadFile(entry.File)
		if err != nil {
			log.Error().Err(err).Str("keyword", entry.Keyword).Msg("failed to read zTXt payload")
			return 6
		}
		if err := p.image.AddZTextPayload(entry.Keyword, data); err != nil {
			log.Error().Err(err).Str("keyword", entry.Keyword).Msg("failed to add zTXt payload")
			return 7
		}
	}

	if *stegoFile != "" {
		data, err := os.ReadFile(*stegoFile)
		if err != nil {
			log.Error().Err(err).Msg("failed to read stego payload file")
			return 8
		}
		log.Info().Msg("creating stego payload, this may take a moment for large images")
		embedded, err := stego.Embed(p.image, data)
		if err != nil {
			log.Error().Err(err).Msg("failed to create stego payload")
			return 8
		}
		p.image = embedded
	}

	if err := p.save(*output); err != nil {
		log.Error().Err(err).Msg("failed to save payload")
		return 9
	}

	log.Info().Str("output", *output).Msg("payload saved")
	return 0
}

func runExtract(args []string) int {
	fs := newFlagSet("extract")
	input := fs.String("input", "", "the file to extract payloads from")
	output := fs.String("output", "", "the output directory")
	all := fs.Bool("all", false, "extract every technique (default if nothing else is specified)")
	trailing := fs.Bool("trailing-data-payload", false, "extract trailing data")
	textKeyword := fs.String("text-section-payload", "", "keyword of the tEXt payload to extract")
	ztextKeyword := fs.String("ztxt-section-payload", "", "keyword of the zTXt payload to extract")
	extractStego := fs.Bool("stego-payload", false, "extract a steganographic payload")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *input == "" || *output == "" {
		log.Error().Msg("--input and --output are required")
		return 1
	}

	p, err := openPayload(*input)
	if err != nil {
		log.Error().Err(err).Msg("failed to load input file")
		return 1
	}

	allTechniques := *all || (!*trailing && *textKeyword == "" && *ztextKeyword == "" && !*extractStego)
	found := 0

	if allTechniques || *trailing {
		if data, ok := p.image.TrailingData(); ok {
			if err := writeExtractedFile(*output, "trailing_data.bin", data); err != nil {
				log.Error().Err(err).Msg("failed to save trailing data")
				return 2
			}
			found++
		} else if !allTechniques {
			log.Error().Msg("no trailing data found")
			return 3
		}
	}

	if allTechniques || *textKeyword != "" {
		n, err := extractTexts(*output, p.image, *textKeyword, allTechniques)
		if err != nil {
			log.Error().Err(err).Msg("failed to extract tEXt payloads")
			return 4
		}
		found += n
	}

	if allTechniques || *ztextKeyword != "" {
		n, err := extractZTexts(*output, p.image, *ztextKeyword, allTechniques)
		if err != nil {
			log.Error().Err(err).Msg("failed to extract zTXt payloads")
			return 10
		}
		found += n
	}

	if allTechniques || *extractStego {
		if err := p.image.Load(); err != nil {
			log.Error().Err(err).Msg("failed to load image pixels")
			return 16
		}
		if stego.HasPayload(p.image) {
			data, err := stego.Extract(p.image)
			if err != nil {
				log.Error().Err(err).Msg("failed to extract stego payload")
				return 17
			}
			if err := writeExtractedFile(*output, "stego_payload.bin", data); err != nil {
				log.Error().Err(err).Msg("failed to save stego payload")
				return 18
			}
			found++
		} else if !allTechniques {
			log.Error().Msg("no stego payload found")
			return 19
		}
	}

	log.Info().Int("found", found).Msg("extraction finished")
	return 0
}

func extractTexts(outDir string, img *png.Image, keyword string, scanAll bool) (int, error) {
	found := 0
	counts := map[string]int{}

	if scanAll {
		matches, err := img.AllText()
		if err != nil {
			return 0, err
		}
		for _, t := range matches {
			if !isPossiblePayload(t.Value) {
				continue
			}
			counts[t.Keyword]++
			data, err := img.ExtractTextPayloads(t.Keyword)
			if err != nil {
				continue
			}
			for _, d := range data {
				name := fmt.Sprintf("%s.%04d.bin", t.Keyword, counts[t.Keyword])
				if err := writeExtractedFile(outDir, name, d); err != nil {
					return found, err
				}
				found++
			}
		}
		return found, nil
	}

	data, err := img.ExtractTextPayloads(keyword)
	if err != nil {
		return 0, err
	}
	for i, d := range data {
		name := fmt.Sprintf("%s.%04d.bin", keyword, i+1)
		if err := writeExtractedFile(outDir, name, d); err != nil {
			return found, err
		}
		found++
	}
	return found, nil
}

func extractZTexts(outDir string, img *png.Image, keyword string, scanAll bool) (int, error) {
	found := 0

	if scanAll {
		matches, err := img.AllZText()
		if err != nil {
			return 0, err
		}
		counts := map[string]int{}
		for _, t := range matches {
			if !isPossiblePayload(t.Value) {
				continue
			}
			counts[t.Keyword]++
			data, err := img.ExtractZTextPayloads(t.Keyword)
			if err != nil {
				continue
			}
			for _, d := range data {
				name := fmt.Sprintf("%s.%04d.bin", t.Keyword, counts[t.Keyword])
				if err := writeExtractedFile(outDir, name, d); err != nil {
					return found, err
				}
				found++
			}
		}
		return found, nil
	}

	data, err := img.ExtractZTextPayloads(keyword)
	if err != nil {
		return 0, err
	}
	for i, d := range data {
		name := fmt.Sprintf("%s.%04d.bin", keyword, i+1)
		if err := writeExtractedFile(outDir, name, d); err != nil {
			return found, err
		}
		found++
	}
	return found, nil
}

func isPossiblePayload(text string) bool {
	for i := 0; i < len(text); i++ {
		c := text[i]
		isAlpha := c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		if !isAlpha && !isDigit && c != '+' && c != '/' && c != '=' {
			return false
		}
	}
	return len(text) > 0
}

func writeExtractedFile(dir, name string, data []byte) error {
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}

func runDetect(args []string) int {
	fs := newFlagSet("detect")
	autoDetect := fs.Bool("auto-detect", false, "automatically detect every technique")
	minimal := fs.Bool("minimal", false, "print a CSV report instead of a narrated one")
	trailing := fs.Bool("trailing-data", false, "check for trailing data")
	textKeyword := fs.String("text-data", "", "tEXt keyword to check for, blank scans all tEXt chunks")
	ztextKeyword := fs.String("ztxt-data", "", "zTXt keyword to check for, blank scans all zTXt chunks")
	checkStego := fs.Bool("stego-data", false, "check for a steganographic payload")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		log.Error().Msg("a filename argument is required")
		return 1
	}
	input := fs.Arg(0)

	p, err := openPayload(input)
	if err != nil {
		if !*minimal {
			log.Error().Err(err).Msg("failed to load input file")
		}
		return 1
	}

	doAuto := *autoDetect || (!*trailing && *textKeyword == "" && *ztextKeyword == "" && !*checkStego)

	var report []string

	if doAuto || *trailing {
		if _, ok := p.image.TrailingData(); ok {
			report = append(report, "trailing-data")
		}
	}

	if doAuto || *textKeyword != "" {
		var matches []png.Text
		if *textKeyword == "" {
			matches, _ = p.image.AllText()
		} else {
			matches, _ = p.image.GetText(*textKeyword)
		}
		for _, t := range matches {
			if isPossiblePayload(t.Value) {
				report = append(report, "tEXt:"+t.Keyword)
			}
		}
	}

	if doAuto || *ztextKeyword != "" {
		var matches []png.ZText
		if *ztextKeyword == "" {
			matches, _ = p.image.AllZText()
		} else {
			matches, _ = p.image.GetZText(*ztextKeyword)
		}
		for _, t := range matches {
			if isPossiblePayload(t.Value) {
				report = append(report, "zTXt:"+t.Keyword)
			}
		}
	}

	if doAuto || *checkStego {
		if err := p.image.Load(); err != nil {
			if !*minimal {
				log.Error().Err(err).Msg("failed to load input")
			}
			return 3
		}
		if stego.HasPayload(p.image) {
			report = append(report, "stego")
		}
	}

	if *minimal {
		fmt.Println(strings.Join(report, ","))
	} else {
		log.Info().Strs("found", report).Msg("detection finished")
	}
	return 0
}
