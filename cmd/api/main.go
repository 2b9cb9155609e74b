package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"intelligent_accountant/pkg/api/assistant"
	"intelligent_accountant/pkg/api/config"
	apiworkspace "intelligent_accountant/pkg/api/workspace"
	"intelligent_accountant/pkg/core/agent"
	"intelligent_accountant/pkg/core/analyst"
	"intelligent_accountant/pkg/core/classify"
	"intelligent_accountant/pkg/core/insight"
	"intelligent_accountant/pkg/core/prompt"
	"intelligent_accountant/pkg/core/store"
	"intelligent_accountant/pkg/core/workspace"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize Prompt Library
	// Determine resources path (relative to executable or working directory)
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		// Try from executable directory
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt library: %v\n", err)
		fmt.Println("  Falling back to hardcoded prompts")
	} else {
		fmt.Printf("[PROMPT] Loaded %d prompts from %s\n", prompt.Get().Count(), resourcesPath)
	}

	// Initialize manager from config
	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	// Classifier rules: custom YAML when present, defaults otherwise
	rules := classify.DefaultRules()
	if _, err := os.Stat("config/rules.yaml"); err == nil {
		loaded, err := classify.LoadRules("config/rules.yaml")
		if err != nil {
			fmt.Printf("[WARNING] Failed to load classifier rules: %v\n", err)
		} else {
			rules = loaded
		}
	}

	// Load the workspace from the data directory
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	ws := workspace.New(rules)
	if _, err := os.Stat(dataDir); err == nil {
		if err := ws.LoadDirectory(dataDir); err != nil {
			fmt.Printf("[WARNING] Failed to load data directory: %v\n", err)
		}
	}

	// Session persistence: Postgres when DATABASE_URL is set, files otherwise
	ctx := context.Background()
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[WARNING] Database init failed, using file sessions: %v\n", err)
		}
	}
	sessions := store.NewSessionStore(store.GetPool(), "")
	if err := sessions.EnsureSchema(ctx); err != nil {
		fmt.Printf("[WARNING] Session schema check failed: %v\n", err)
	}
	defer store.Close()

	// Insight agent is optional; the plan pipeline works without it
	insightAgent, err := insight.NewAgent(ctx)
	if err != nil {
		fmt.Printf("[WARNING] Insight agent disabled: %v\n", err)
		insightAgent = nil
	} else {
		defer insightAgent.Close()
	}

	// Config endpoints
	configHandler := config.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Assistant endpoints
	assistantHandler := assistant.NewHandler(analyst.New(agentMgr), insightAgent, ws, sessions)
	http.HandleFunc("/api/assistant/ask", assistantHandler.HandleAsk)

	// Workspace endpoints
	wsHandler := apiworkspace.NewHandler(ws, dataDir)
	http.HandleFunc("/api/workspace/tables", wsHandler.HandleList)
	http.HandleFunc("/api/workspace/upload", wsHandler.HandleUpload)
	http.HandleFunc("/api/workspace/refresh", wsHandler.HandleRefresh)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - POST /api/assistant/ask")
	fmt.Println("  - GET  /api/workspace/tables")
	fmt.Println("  - POST /api/workspace/upload")
	fmt.Println("  - POST /api/workspace/refresh")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
