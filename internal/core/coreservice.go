package core

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/jo-hoe/goquantize/internal/backend/batch"
	"github.com/jo-hoe/goquantize/internal/backend/database"
	"github.com/jo-hoe/goquantize/internal/backend/filters"
	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
	"github.com/jo-hoe/goquantize/internal/backend/imagefile"
)

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	dispatcher      *batch.Dispatcher
	saver           imagefile.Saver
}

func NewCoreService(config *ServiceConfig) (*CoreService, error) {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		return nil, err
	}

	saver := imagefile.Saver{JPEGQuality: config.JPEGQuality}

	return &CoreService{
		config:          config,
		databaseService: databaseService,
		dispatcher:      batch.NewDispatcher(config.Workers, saver, databaseService),
		saver:           saver,
	}, nil
}

// Workers returns the batch pool size
func (service *CoreService) Workers() int {
	return service.dispatcher.Workers()
}

// RunBatch filters every eligible image in sourceDir into outputDir
func (service *CoreService) RunBatch(selector filterstructure.Selector, sourceDir, outputDir string, args filterstructure.Args) (batch.Report, error) {
	return service.dispatcher.Run(selector, sourceDir, outputDir, service.withDefaults(args))
}

// ProcessFile filters a single image file synchronously
func (service *CoreService) ProcessFile(source string, selector filterstructure.Selector, destination string, args filterstructure.Args) (string, error) {
	return batch.ProcessFile(source, selector, destination, service.withDefaults(args), service.saver)
}

// FilterImage decodes an in-memory image, filters it and returns PNG bytes
func (service *CoreService) FilterImage(data []byte, selector filterstructure.Selector, args filterstructure.Args) ([]byte, error) {
	img, format, err := imagefile.Decode(data, imagefile.DecodeOptions{
		SVGFallbackWidth:  service.config.SVGFallbackWidth,
		SVGFallbackHeight: service.config.SVGFallbackHeight,
		MaxPixels:         service.config.MaxPixels,
	})
	if err != nil {
		return nil, err
	}

	if err := filters.Apply(img, selector, service.withDefaults(args)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imagefile.Encode(&buf, img, imaging.PNG, service.config.JPEGQuality); err != nil {
		return nil, err
	}

	slog.Debug("filtered uploaded image",
		"filter", selector,
		"input_format", format,
		"input_size_bytes", len(data),
		"output_size_bytes", buf.Len())
	return buf.Bytes(), nil
}

// GetRuns lists recorded batch runs, newest first
func (service *CoreService) GetRuns(limit int) ([]*database.Run, error) {
	if service.databaseService == nil {
		return nil, ErrJournalDisabled
	}
	return service.databaseService.GetRuns(limit)
}

// GetRun returns a recorded batch run with its results
func (service *CoreService) GetRun(id string) (*database.Run, error) {
	if service.databaseService == nil {
		return nil, ErrJournalDisabled
	}
	return service.databaseService.GetRunByID(id)
}

func (service *CoreService) Close() error {
	if service.databaseService == nil {
		return nil
	}
	return service.databaseService.Close()
}

// withDefaults fills unset arguments from the configuration
func (service *CoreService) withDefaults(args filterstructure.Args) filterstructure.Args {
	if args.Acceptance == nil {
		args.Acceptance = service.config.Acceptance
	}
	return args
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	if config.Database.Type == "" {
		slog.Debug("run journal disabled")
		return nil, nil
	}
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}
