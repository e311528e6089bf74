package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evse-sim/config"
	"github.com/kilianp07/evse-sim/core/controller"
	coremqtt "github.com/kilianp07/evse-sim/core/mqtt"
	"github.com/kilianp07/evse-sim/infra/logger"
	"github.com/kilianp07/evse-sim/infra/mqtt"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run the scripted charging session against the charger",
	RunE:  runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mqttCfg := cfg.MQTT
	if mqttCfg.ClientID != "" {
		mqttCfg.ClientID = fmt.Sprintf("%s-session-%d", mqttCfg.ClientID, time.Now().UnixNano())
	}
	client, err := mqtt.NewClient(mqttCfg)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Close()

	log := logger.New("session")
	seq := controller.New(client, controller.Config{
		Topics:      coremqtt.NewTopics(cfg.Charger.BaseTopic),
		AwaitStatus: cfg.Session.AwaitStatus,
		AckTimeout:  time.Duration(cfg.Session.AckTimeoutSeconds) * time.Second,
	}, log)

	script := controller.NewScript(
		time.Duration(cfg.Session.SettleSeconds)*time.Second,
		time.Duration(cfg.Session.ChargeSeconds)*time.Second,
		time.Duration(cfg.Session.ExportSeconds)*time.Second,
		cfg.Session.ChargeAmps,
		cfg.Session.ExportAmps,
	)
	if err := seq.Run(ctx, script); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	log.Infof("session complete")
	return nil
}
