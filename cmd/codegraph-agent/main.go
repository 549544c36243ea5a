package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/codegraph-ai/agentic-core/internal/config"
	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/graphtool"
	"github.com/codegraph-ai/agentic-core/internal/llmclient/openai"
	"github.com/codegraph-ai/agentic-core/internal/orchestrator"
	"github.com/codegraph-ai/agentic-core/internal/promptreg"
)

func main() {
	config.LoadEnv()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║     CodeGraph Agentic Core v0.1      ║")
	fmt.Println("║   ReAct over a fixed graph toolset   ║")
	fmt.Println("╚══════════════════════════════════════╝")

	if err := promptreg.LoadOverrides(os.Getenv("CODEGRAPH_PROMPT_OVERRIDES")); err != nil {
		log.Printf("[Main] WARNING: prompt overrides not applied: %v", err)
	}

	llmClient, err := openai.NewClientFromEnv()
	if err != nil {
		log.Fatalf("failed to initialize LLM client: %v", err)
	}
	fmt.Printf("LLM: %s @ %s\n", os.Getenv("LLM_MODEL"), os.Getenv("LLM_BASE_URL"))

	executor := graphtool.NewMCPExecutor(graphServerConfigFromEnv())
	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = executor.Connect(connectCtx)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to graph MCP server: %v", err)
	}
	defer executor.Close()
	fmt.Println("Graph MCP server: connected")

	contextWindow := getEnvIntOrDefault("CODEGRAPH_CONTEXT_WINDOW_CONFIGURED", 128_000)
	orch := orchestrator.New(llmClient, executor, contextWindow)

	if len(os.Args) < 3 {
		log.Fatal("usage: codegraph-agent <analysis_type> <query...>")
	}
	analysisType := domain.AnalysisType(os.Args[1])
	query := strings.Join(os.Args[2:], " ")
	if !analysisType.Valid() {
		log.Fatalf("unknown analysis type %q, want one of %v", analysisType, domain.AnalysisTypes)
	}

	ctx := context.Background()
	result, err := orch.Execute(ctx, query, analysisType)
	if err != nil {
		log.Fatalf("execute: %v", err)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

// graphServerConfigFromEnv reads the graph MCP server connection settings.
// Defaults to stdio, for a locally-spawned server process.
func graphServerConfigFromEnv() graphtool.ServerConfig {
	transport := getEnvOrDefault("CODEGRAPH_GRAPH_TRANSPORT", "stdio")
	cfg := graphtool.ServerConfig{
		Transport: transport,
		Command:   os.Getenv("CODEGRAPH_GRAPH_COMMAND"),
		URL:       os.Getenv("CODEGRAPH_GRAPH_URL"),
	}
	if args := os.Getenv("CODEGRAPH_GRAPH_ARGS"); args != "" {
		cfg.Args = strings.Fields(args)
	}
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.Printf("[Main] WARNING: invalid value for %s=%q, using default %d", key, v, defaultValue)
	}
	return defaultValue
}
