package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/sankalp69/Visa-prediction/internal/app"
	"github.com/sankalp69/Visa-prediction/internal/config"
	"github.com/sankalp69/Visa-prediction/internal/domain"
	"github.com/sankalp69/Visa-prediction/internal/pipeline"
	"github.com/sankalp69/Visa-prediction/pkg/logger"
	"github.com/urfave/cli/v2"
)

type appKey struct{}

func initApp(c *cli.Context) error {
	cfg := config.Load()
	if bucket := c.String("bucket"); bucket != "" {
		cfg.Artifacts.Bucket = bucket
	}
	logger.Configure(cfg.Log.Format, os.Stderr)
	logger.SetLevel(cfg.Log.Level)

	application, err := app.New(c.Context, cfg)
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, appKey{}, application)
	return nil
}

func closeApp(c *cli.Context) error {
	if application, ok := c.Context.Value(appKey{}).(*app.App); ok && application != nil {
		return application.Close()
	}
	return nil
}

func fromContext(c *cli.Context) *app.App {
	return c.Context.Value(appKey{}).(*app.App)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cliApp := &cli.App{
		Name:  "artifacts",
		Usage: "Move model artifacts between local disk and the object store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bucket",
				Usage:   "Bucket name (overrides ARTIFACT_BUCKET)",
				EnvVars: []string{"ARTIFACT_BUCKET"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "upload",
				Usage: "Upload a local file to a key",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "Local file path", Required: true},
					&cli.StringFlag{Name: "to", Usage: "Object key", Required: true},
					&cli.BoolFlag{Name: "keep", Usage: "Keep the local file after upload"},
				},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					return fromContext(c).Artifacts.Upload(c.Context, c.String("from"), c.String("to"), !c.Bool("keep"))
				},
			},
			{
				Name:  "download",
				Usage: "Download a key to a local file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "Object key", Required: true},
					&cli.StringFlag{Name: "to", Usage: "Local file path", Required: true},
				},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					return fromContext(c).Artifacts.Download(c.Context, c.String("from"), c.String("to"))
				},
			},
			{
				Name:   "list",
				Usage:  "List keys under a prefix",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "prefix", Usage: "Key prefix"}},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					keys, err := fromContext(c).Artifacts.List(c.Context, c.String("prefix"))
					if err != nil {
						return err
					}
					for _, key := range keys {
						fmt.Println(key)
					}
					return nil
				},
			},
			{
				Name:   "delete",
				Usage:  "Delete a key",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "key", Usage: "Object key", Required: true}},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					return fromContext(c).Artifacts.Delete(c.Context, c.String("key"))
				},
			},
			{
				Name:  "push",
				Usage: "Publish a trained model and its preprocessor",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "model", Usage: "Exported model file", Required: true},
					&cli.StringFlag{Name: "preprocessor", Usage: "Exported preprocessor file", Required: true},
					&cli.StringFlag{Name: "prefix", Usage: "Key prefix (defaults to MODEL_PUSHER_KEY)"},
				},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					a := fromContext(c)
					prefix := c.String("prefix")
					if prefix == "" {
						prefix = a.Config.Artifacts.ModelPusherKey
					}
					pusher := pipeline.NewModelPusher(a.Artifacts,
						domain.ModelEvaluationArtifact{
							ExportModelPath:        c.String("model"),
							ExportPreprocessorPath: c.String("preprocessor"),
						},
						domain.NewModelPusherConfig(prefix),
						pipeline.WithPushRecorder(a.Pushes),
					)
					artifact, err := pusher.InitiateModelPusher(c.Context)
					if err != nil {
						return err
					}
					return printJSON(artifact)
				},
			},
			{
				Name:  "save-model",
				Usage: "Upload a serialized model into the registry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "Serialized model file", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Model name", Required: true},
				},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					return fromContext(c).Estimator.SaveModelFile(c.Context, c.String("file"), c.String("name"))
				},
			},
			{
				Name:   "load-model",
				Usage:  "Download a model from the registry and print its local path",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "name", Usage: "Model name", Required: true}},
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					path, err := fromContext(c).Estimator.LoadModel(c.Context, c.String("name"))
					if err != nil {
						return err
					}
					fmt.Println(path)
					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
