package controllers

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/likexian/whois"
	"github.com/sirupsen/logrus"

	"mailsift/progress"
	"mailsift/verifier"
	"mailsift/worker"
)

// JobController exposes the verification job API: upload a file to start a
// job, poll its progress, download the CSV artifact, plus a synchronous
// single-address endpoint.
type JobController struct {
	Runner    *worker.JobRunner
	Engine    *verifier.Engine
	Progress  progress.Store
	UploadDir string
	OutputDir string
	Logger    logrus.FieldLogger
}

func NewJobController(runner *worker.JobRunner, engine *verifier.Engine, store progress.Store, uploadDir, outputDir string, logger logrus.FieldLogger) *JobController {
	return &JobController{
		Runner:    runner,
		Engine:    engine,
		Progress:  store,
		UploadDir: uploadDir,
		OutputDir: outputDir,
		Logger:    logger,
	}
}

// Upload saves the posted file and starts verification in the background.
func (jc *JobController) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A file upload is required",
		})
	}
	deep := c.QueryBool("deep", false)

	jobID := fiberutils.UUID()
	jobUploadDir := filepath.Join(jc.UploadDir, jobID)
	jobOutputDir := filepath.Join(jc.OutputDir, jobID)
	for _, dir := range []string{jobUploadDir, jobOutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			jc.Logger.WithError(err).Error("failed to create job directories")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create job",
			})
		}
	}

	inputPath := filepath.Join(jobUploadDir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, inputPath); err != nil {
		jc.Logger.WithError(err).Error("failed to save upload")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save uploaded file",
		})
	}

	if err := jc.Progress.Create(c.Context(), jobID); err != nil {
		jc.Logger.WithError(err).Error("failed to create job progress entry")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create job",
		})
	}

	// The request context dies with the response; the job outlives it.
	go jc.Runner.Run(context.Background(), jobID, inputPath, jobOutputDir, deep)

	jc.Logger.WithFields(logrus.Fields{"job_id": jobID, "deep": deep}).Info("verification job started")
	return c.JSON(fiber.Map{
		"job_id": jobID,
		"status": "started",
	})
}

// GetProgress reports a job's done/total counters and terminal status.
func (jc *JobController) GetProgress(c *fiber.Ctx) error {
	jobID := c.Params("id")

	job, err := jc.Progress.Get(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, progress.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job not found",
			})
		}
		jc.Logger.WithError(err).Error("failed to read job progress")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read job progress",
		})
	}

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"done":    job.Done,
		"total":   job.Total,
		"percent": job.Percent(),
		"status":  job.Status,
		"error":   job.Error,
	})
}

// Download streams the combined CSV artifact for a finished job.
func (jc *JobController) Download(c *fiber.Ctx) error {
	jobID := c.Params("id")

	path := filepath.Join(jc.OutputDir, jobID, "verified_results.csv")
	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No result file found",
		})
	}
	return c.Download(path, "verified_results.csv")
}

// VerifyEmail classifies a single address synchronously, with WHOIS data on
// the domain when available.
func (jc *JobController) VerifyEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email address is required",
		})
	}
	deep := c.QueryBool("deep", true)

	result := jc.Engine.Classify(c.Context(), email, deep)

	if domain, err := verifier.DomainOf(result.Email); err == nil {
		if whoisInfo, err := whois.Whois(domain); err == nil {
			result.WHOIS = whoisInfo
		}
	}
	return c.JSON(result)
}
