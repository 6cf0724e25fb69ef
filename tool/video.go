package tool

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/openai/openai-go"

	"github.com/hupe1980/autocrew/core"
)

// Sora job parameters accepted by the API. Seconds travel as string literals.
var (
	validVideoSeconds = map[string]bool{"4": true, "8": true, "12": true}
	validVideoSizes   = map[string]bool{
		"720x1280": true, "1280x720": true, "1024x1792": true, "1792x1024": true,
	}
)

// videoPollInterval is how often a pending Sora job is re-checked.
const videoPollInterval = 10 * time.Second

type generateVideoArgs struct {
	Prompt  string `json:"prompt" description:"Text description of the video to generate (max 500 chars)"`
	Seconds *int   `json:"seconds,omitempty" description:"Video length in seconds. Allowed: 4, 8, or 12. Default: 4"`
	Size    string `json:"size,omitempty" description:"Video resolution. Options: 1280x720 (landscape), 720x1280 (portrait), 1792x1024 (wide), 1024x1792 (tall). Default: 1280x720"`
}

// videoJob mirrors the video endpoint's job resource. The videos API has no
// typed SDK surface yet, so requests go through the client's raw endpoints.
type videoJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewGenerateVideoTool returns the generate_video built-in: submit a Sora
// job, poll it to a terminal status and download the MP4 into outputDir.
func NewGenerateVideoTool(client *openai.Client, outputDir string) *FunctionTool {
	return NewFunctionToolFromStruct(
		"generate_video",
		"Generate a video from a text prompt using the Sora model. The video is saved to the output directory and the file path is returned. Generation takes 30 seconds to a few minutes. Use for creating short video clips.",
		generateVideoArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			prompt, _ := args["prompt"].(string)

			seconds := "4"
			if raw, ok := args["seconds"].(float64); ok {
				seconds = fmt.Sprintf("%d", int(raw))
			}
			if !validVideoSeconds[seconds] {
				return fmt.Sprintf("Error: seconds must be 4, 8, or 12 (got %s)", seconds), nil
			}

			size := "1280x720"
			if raw, ok := args["size"].(string); ok && raw != "" {
				size = raw
			}
			if !validVideoSizes[size] {
				return fmt.Sprintf("Error: size must be one of 720x1280, 1280x720, 1024x1792, 1792x1024 (got %s)", size), nil
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return nil, fmt.Errorf("create video output dir: %w", err)
			}

			ctx := toolCtx.Context()
			logger := toolCtx.Logger()

			var job videoJob
			body := map[string]any{
				"model":   "sora-2",
				"prompt":  prompt,
				"seconds": seconds,
				"size":    size,
			}
			if err := client.Post(ctx, "videos", body, &job); err != nil {
				return fmt.Sprintf("Error during video generation: %v", err), nil
			}
			logger.Info("video.job_submitted", "job_id", job.ID, "seconds", seconds, "size", size)

			for job.Status != "completed" && job.Status != "failed" {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(videoPollInterval):
				}
				if err := client.Get(ctx, "videos/"+job.ID, nil, &job); err != nil {
					return fmt.Sprintf("Error polling video job: %v", err), nil
				}
			}
			if job.Status != "completed" {
				message := "unknown error"
				if job.Error != nil {
					message = job.Error.Message
				}
				return fmt.Sprintf("Video generation failed (status=%s): %s", job.Status, message), nil
			}

			var raw *http.Response
			if err := client.Get(ctx, "videos/"+job.ID+"/content", nil, &raw); err != nil {
				return fmt.Sprintf("Error downloading video: %v", err), nil
			}
			defer raw.Body.Close()

			filename := fmt.Sprintf("video_%s.mp4", time.Now().Format("20060102_150405"))
			path := filepath.Join(outputDir, filename)
			file, err := os.Create(path)
			if err != nil {
				return nil, fmt.Errorf("create video file: %w", err)
			}
			written, err := io.Copy(file, raw.Body)
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return nil, fmt.Errorf("write video file: %w", err)
			}

			return fmt.Sprintf("Video saved to %s (%d KB, %ss, %s)", path, written/1024, seconds, size), nil
		},
	).WithTimeout(15 * time.Minute)
}
