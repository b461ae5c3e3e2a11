package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"ai-skincare-client/internal/bootstrap"
	"ai-skincare-client/internal/config"
	"ai-skincare-client/internal/dto"
	"ai-skincare-client/internal/tracer"
	"ai-skincare-client/pkg/agent"
	"ai-skincare-client/pkg/catalog"
	"ai-skincare-client/pkg/flow"
	"ai-skincare-client/pkg/store"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := tracer.InitTracer()
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("[WARN] Tracer shutdown: %v", err)
		}
	}()

	container := bootstrap.NewContainer(cfg)
	defer container.Bus.Close()
	defer container.Logger.Sync()

	if err := container.TelemetryService.Consume(ctx); err != nil {
		log.Fatalf("[FATAL] Failed to start telemetry consumer: %v", err)
	}

	color.Cyan("=== Skincare Concierge Demo ===")
	color.Cyan("Mode: %s | Language: %s\n", cfg.App.Mode, cfg.App.Language)

	svc := container.FlowService

	sess, err := svc.StartSession(ctx, &dto.StartSessionRequest{
		Mode:     cfg.App.Mode,
		Language: cfg.App.Language,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to start session: %v", err)
	}
	color.Green("Session started: %s", sess.BriefID)

	step := func(name string, fn func() (*store.Session, error)) *store.Session {
		color.Yellow("\n[STEP] %s", name)
		s, err := fn()
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("State: %s", s.State)
		return s
	}

	chip := func(id string, next flow.State) {
		result := svc.ApplyTransition(agent.TransitionRequest{
			TriggerSource:      agent.SourceChip,
			TriggerID:          id,
			RequestedNextState: next,
		})
		if !result.OK {
			color.Red("Transition rejected: %s (%s)", id, result.Reason)
			os.Exit(1)
		}
		color.Green("Chip %s -> %s", id, result.NextState)
	}

	chip("chip_get_started", flow.StateOpenIntent)
	chip("chip_start_diagnosis", flow.StateDiagnosis)

	step("Submit diagnosis", func() (*store.Session, error) {
		return svc.SubmitDiagnosis(ctx, &dto.DiagnosisRequest{
			SkinType: "combination",
			Concerns: []string{"acne", "dullness"},
		})
	})

	sess = step("Attach photos", func() (*store.Session, error) {
		return svc.AttachPhotos(ctx, &dto.AttachPhotosRequest{
			Photos: []dto.PhotoUploadRequest{
				{Slot: store.SlotDaylight, SourceID: "upload-day-1"},
				{Slot: store.SlotIndoorWhite, SourceID: "upload-indoor-1"},
			},
		})
	})

	if sess.State == flow.StatePhotoQC {
		color.Yellow("Photo QC asked for a retake, switching to a sample set")
		step("Use sample photos", func() (*store.Session, error) {
			return svc.UseSamplePhotos(ctx, &dto.UseSamplePhotosRequest{
				SampleSetID: catalog.SamplePhotoSets[0],
			})
		})
	}

	step("Run analysis", func() (*store.Session, error) {
		return svc.RunAnalysis(ctx)
	})

	chip("chip_risk_check", flow.StateRiskCheck)

	step("Answer risk check", func() (*store.Session, error) {
		return svc.AnswerRiskCheck(ctx, &dto.RiskCheckRequest{})
	})

	step("Submit budget", func() (*store.Session, error) {
		return svc.SubmitBudget(ctx, &dto.BudgetRequest{Tier: store.BudgetBalanced})
	})

	sess = step("Build product pairs", func() (*store.Session, error) {
		return svc.BuildProductPairs(ctx)
	})
	printPairs(sess)

	if len(sess.ProductPairs.AM) > 0 {
		pair := sess.ProductPairs.AM[0]
		if len(pair.Dupe.Offers) > 0 {
			step("Select an offer", func() (*store.Session, error) {
				return svc.SelectOffer(ctx, &dto.SelectOfferRequest{
					Category: pair.Category,
					Variant:  store.VariantDupe,
					OfferID:  pair.Dupe.Offers[0].SKU,
				})
			})
		}
	}

	chip("chip_checkout", flow.StateCheckout)

	sess = step("Checkout", func() (*store.Session, error) {
		return svc.Checkout(ctx)
	})
	printCheckout(sess)

	if sess.State == flow.StateFailure {
		color.Yellow("Checkout failed, retrying once")
		chip("chip_retry_checkout", flow.StateCheckout)
		sess = step("Retry checkout", func() (*store.Session, error) {
			return svc.Checkout(ctx)
		})
		printCheckout(sess)
	}

	color.Cyan("\n=== Conversation finished in state %s ===", sess.State)
}

func printPairs(s *store.Session) {
	if s.ProductPairs == nil {
		return
	}
	for _, pair := range s.ProductPairs.AM {
		fmt.Printf("  AM %-12s premium: %s | dupe: %s\n", pair.Category, pair.Premium.Name, pair.Dupe.Name)
	}
	for _, pair := range s.ProductPairs.PM {
		fmt.Printf("  PM %-12s premium: %s | dupe: %s\n", pair.Category, pair.Premium.Name, pair.Dupe.Name)
	}
}

func printCheckout(s *store.Session) {
	if s.CheckoutResult == nil {
		return
	}
	if s.CheckoutResult.Success {
		color.Green("Order placed: %s", s.CheckoutResult.OrderID)
	} else {
		color.Red("Checkout failed: %s (skus: %v)", s.CheckoutResult.FailureCode, s.CheckoutResult.FailedSKUs)
	}
	for _, u := range s.CheckoutResult.AffiliateURL {
		fmt.Printf("  outbound: %s\n", u)
	}
}
