package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"paper2diagram/export"
	"paper2diagram/gateway"
	"paper2diagram/server"
	"paper2diagram/storage"
	"paper2diagram/workflow"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)

	configPath := flag.String("config", "config.json", "path to config.json")
	serve := flag.Bool("serve", false, "start the local API server")
	addr := flag.String("addr", "", "listen address when --serve (overrides config)")
	paperPath := flag.String("paper", "", "paper text/markdown file for one-shot mode")
	outDir := flag.String("out", ".", "output directory for one-shot mode")
	mock := flag.Bool("mock", false, "use the mock chat client instead of a remote model")
	flag.Parse()

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *mock {
		cfg.MockLLM = true
	}

	kv, err := storage.NewFileKV(cfg.DataDir, cfg.StorageQuotaBytes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	store := workflow.NewStore(kv, workflow.State{Language: cfg.Language})
	if err := store.Hydrate(); err != nil {
		logrus.WithError(err).Warn("hydration failed, continuing with defaults")
	}
	seedConfigs(store, cfg)

	var chat gateway.ChatClient = gateway.OpenAIChat{}
	if cfg.MockLLM {
		chat = gateway.MockChat{}
	}
	gw, err := gateway.NewGateway(chat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serve {
		srv, err := server.New(gw, store, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		logrus.Infof("starting API server on %s", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *paperPath == "" {
		fmt.Fprintln(os.Stderr, "--paper is required unless --serve is given")
		os.Exit(1)
	}
	if err := runOnce(gw, store, *paperPath, *outDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// seedConfigs fills any model settings the persisted state did not provide
// from the config file, so a fresh data dir still picks up config.json.
func seedConfigs(store *workflow.Store, cfg server.Config) {
	st := store.Snapshot()
	if st.LogicConfig.ModelName == "" && cfg.LogicModel != nil {
		store.SetLogicConfig(gateway.ModelConfig{
			BaseURL:   cfg.LogicModel.BaseURL,
			APIKey:    cfg.LogicModel.APIKey,
			ModelName: cfg.LogicModel.Model,
		})
	}
	if st.VisionConfig.ModelName == "" && cfg.VisionModel != nil {
		store.SetVisionConfig(gateway.ModelConfig{
			BaseURL:   cfg.VisionModel.BaseURL,
			APIKey:    cfg.VisionModel.APIKey,
			ModelName: cfg.VisionModel.Model,
		})
	}
	if st.Language == "" {
		store.SetLanguage(cfg.Language)
	}
}

// runOnce drives the full pipeline for a single paper file: generate the
// visual schema, render the diagram, write both to the output directory.
func runOnce(gw *gateway.Gateway, store *workflow.Store, paperPath, outDir string) error {
	paper, err := os.ReadFile(paperPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	store.SetPaperContent(string(paper))
	st := store.Snapshot()

	ctx := context.Background()
	logrus.Infof("generating visual schema from %s", paperPath)
	schemaRes, err := gw.GenerateSchema(ctx, st.PaperContent, st.LogicConfig, nil)
	if err != nil {
		return err
	}
	store.SetGeneratedSchema(schemaRes.Schema)
	store.SetCurrentStep(2)

	schemaPath := filepath.Join(outDir, "schema.md")
	if err := os.WriteFile(schemaPath, export.SchemaMarkdown(schemaRes.Schema), 0o644); err != nil {
		return err
	}
	logrus.Infof("schema written to %s", schemaPath)

	logrus.Info("rendering diagram image")
	renderRes, err := gw.RenderImage(ctx, schemaRes.Schema, st.VisionConfig, st.ReferenceImages)
	if err != nil {
		return err
	}
	if renderRes.ImageURL == "" {
		// Valid outcome: the model answered in prose. Keep the text so the
		// user can see what came back.
		textPath := filepath.Join(outDir, "response.txt")
		if err := os.WriteFile(textPath, []byte(renderRes.Text), 0o644); err != nil {
			return err
		}
		logrus.Warnf("no image in model response; raw text written to %s", textPath)
		return nil
	}

	store.SetGeneratedImage(renderRes.ImageURL)
	store.AddToHistory(schemaRes.Schema, renderRes.ImageURL)
	store.SetCurrentStep(3)

	mediaType, data, err := export.DecodeImageDataURL(renderRes.ImageURL)
	if err != nil {
		// Remote URL: record it instead of downloading.
		urlPath := filepath.Join(outDir, "diagram.url")
		if err := os.WriteFile(urlPath, []byte(renderRes.ImageURL), 0o644); err != nil {
			return err
		}
		logrus.Infof("image URL written to %s", urlPath)
		return nil
	}
	imagePath := filepath.Join(outDir, "diagram"+export.ImageExt(mediaType))
	if err := os.WriteFile(imagePath, data, 0o644); err != nil {
		return err
	}
	logrus.Infof("diagram written to %s", imagePath)
	fmt.Println(imagePath)
	return nil
}
