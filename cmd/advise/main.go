package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"kisansetu-be/internal/bootstrap"
	"kisansetu-be/internal/config"
	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/internal/service"
	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/advisory/conversation"
	"kisansetu-be/pkg/advisory/format"
	"kisansetu-be/pkg/advisory/prompt"
	"kisansetu-be/pkg/advisory/soil"
	"kisansetu-be/pkg/llm"
	"kisansetu-be/pkg/llm/factory"

	"github.com/fatih/color"
)

// Usage: advise [lat lng]
// Asks questions read from stdin against the configured LLM provider.
func main() {
	cfg := config.Load()
	log := logger.NewIsolatedLogger("advise.log")
	defer log.Sync()

	coords, err := coordinatesFromArgs(os.Args[1:], cfg.Geo)
	if err != nil {
		color.Red("%v", err)
		os.Exit(2)
	}

	ctx := context.Background()
	provider, err := factory.NewLLMProvider(ctx, bootstrap.LLMSettings(cfg, cfg.Ai.LLMProvider, cfg.Ai.LLMModel))
	if err != nil {
		color.Red("Failed to initialise %s: %v", cfg.Ai.LLMProvider, err)
		os.Exit(1)
	}

	color.Cyan("🌾 KisanSetu advisory (%s / %s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	color.Yellow("📍 %s", coords)

	profile := soil.NewResolver(provider, log).Resolve(ctx, coords)
	color.Green("🟤 %s, pH %s, %s [%s]", profile.SoilType, profile.PH, profile.Climate, profile.Source)

	a := &advisor{
		provider: provider,
		builder:  prompt.NewBuilder(cfg.Advisory.MaxHistoryTurns),
		session:  conversation.NewSession(),
		coords:   coords,
		profile:  profile,
		timeout:  60 * time.Second,
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.HiWhiteString("\n❓ "))
		if !scanner.Scan() {
			return
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return
		}

		answer, err := a.ask(ctx, question)
		if err != nil {
			log.Error("ADVISE", "Advisory generation failed", map[string]interface{}{"error": err.Error()})
			color.Red("%s", answer)
			continue
		}
		color.Green("%s", answer)
	}
}

// advisor runs one terminal conversation against a fixed location and soil profile.
type advisor struct {
	provider llm.LLMProvider
	builder  *prompt.Builder
	session  *conversation.Session
	coords   advisory.Coordinates
	profile  soil.Profile
	timeout  time.Duration
}

// ask records the question and always records a reply: the formatted answer, or
// the apology when the model call failed.
func (a *advisor) ask(ctx context.Context, question string) (string, error) {
	text := a.builder.Build(prompt.Context{
		Soil:     a.profile,
		Location: &a.coords,
		History:  a.session.History(),
		Question: question,
	})
	a.session.Append(conversation.UserTurn(question))

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	reply, err := a.provider.Generate(reqCtx, text, llm.WithTemperature(0.7))
	cancel()

	if err != nil {
		apology := service.AdvisoryApology(err)
		a.session.Append(conversation.AssistantTurn(apology))
		return apology, err
	}
	formatted := format.Format(reply)
	a.session.Append(conversation.AssistantTurn(formatted))
	return formatted, nil
}

func coordinatesFromArgs(args []string, geo config.GeoConfig) (advisory.Coordinates, error) {
	if len(args) < 2 {
		return advisory.Coordinates{Latitude: geo.DefaultLat, Longitude: geo.DefaultLng}, nil
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return advisory.Coordinates{}, fmt.Errorf("invalid latitude %q", args[0])
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return advisory.Coordinates{}, fmt.Errorf("invalid longitude %q", args[1])
	}
	c := advisory.Coordinates{Latitude: lat, Longitude: lng}
	return c, c.Validate()
}
