package ocrtool

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DocumentResult is the outcome for one processed image.
type DocumentResult struct {
	Path string
	Text string
	Err  error
}

// RunTool processes the single image or every image of the folder named in
// toolConfig. A failing document is reported in its result and does not stop
// the run.
func RunTool(ctx context.Context, toolConfig ToolConfig) ([]DocumentResult, error) {
	session, err := NewSession(toolConfig.EngineType, toolConfig.Engine)
	if err != nil {
		return nil, err
	}
	return runTool(ctx, session, toolConfig)
}

func runTool(ctx context.Context, session *Session, toolConfig ToolConfig) ([]DocumentResult, error) {
	if err := session.SetCrop(toolConfig.Fractions()); err != nil {
		return nil, err
	}

	if toolConfig.ImagePath != "" {
		if err := session.OpenFile(toolConfig.ImagePath); err != nil {
			return nil, err
		}
		res := processDocument(ctx, session, toolConfig, outputPaths{
			text:  toolConfig.OutText,
			json:  toolConfig.OutJson,
			pdf:   toolConfig.OutPdf,
			image: toolConfig.OutImage,
		})
		return []DocumentResult{res}, res.Err
	}

	loadErr := session.OpenFolder(toolConfig.FolderPath)
	if loadErr != nil && !session.FolderMode() {
		return nil, loadErr
	}

	var results []DocumentResult
	failed := 0
	for {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if loadErr != nil {
			// unreadable file: record it and go on with the next one
			log.Warn().Err(loadErr).Str("component", "OCR_TOOL").Msg("skipping unreadable image")
			skipped := DocumentResult{Err: loadErr}
			var unavailable *ResourceUnavailableError
			if errors.As(loadErr, &unavailable) {
				skipped.Path = unavailable.Path
			}
			results = append(results, skipped)
			failed++
		} else {
			path := session.ImagePath()
			base := strings.TrimSuffix(path, filepath.Ext(path))
			res := processDocument(ctx, session, toolConfig, outputPaths{
				text: base + ".txt",
				json: base + ".json",
			})
			if res.Err != nil {
				failed++
			}
			results = append(results, res)
		}

		var moved bool
		moved, loadErr = session.Next()
		if !moved {
			break
		}
	}

	if failed > 0 {
		return results, errors.Errorf("%d of %d documents failed", failed, len(results))
	}
	return results, nil
}

type outputPaths struct {
	text, json, pdf, image string
}

func processDocument(ctx context.Context, session *Session, toolConfig ToolConfig, out outputPaths) DocumentResult {
	res := DocumentResult{Path: session.ImagePath()}

	if toolConfig.Binarize {
		if res.Err = session.Binarize(); res.Err != nil {
			return res
		}
	}
	if out.image != "" {
		if res.Err = session.SaveImage(out.image); res.Err != nil {
			return res
		}
	}

	wantText := out.text != "" || out.json != "" || out.pdf == ""
	if wantText {
		text, err := session.RunOCR(ctx)
		if err != nil {
			res.Err = err
			return res
		}
		res.Text = text
		if out.text != "" {
			if res.Err = SaveText(out.text, text); res.Err != nil {
				return res
			}
		}
		if out.json != "" {
			if res.Err = session.ExportJSON(out.json, text); res.Err != nil {
				return res
			}
		}
	}

	if out.pdf != "" {
		pdf, err := session.MakePDF(ctx)
		if err != nil {
			res.Err = err
			return res
		}
		res.Err = SavePDF(out.pdf, pdf)
	}
	return res
}
