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
	coremqtt "github.com/kilianp07/evse-sim/core/mqtt"
	"github.com/kilianp07/evse-sim/infra/mqtt"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Print charger status and telemetry to stdout",
	RunE:  runObserve,
}

func init() {
	rootCmd.AddCommand(observeCmd)
}

func runObserve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mqttCfg := cfg.MQTT
	if mqttCfg.ClientID != "" {
		mqttCfg.ClientID = fmt.Sprintf("%s-observe-%d", mqttCfg.ClientID, time.Now().UnixNano())
	}
	client, err := mqtt.NewClient(mqttCfg)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Close()

	topics := coremqtt.NewTopics(cfg.Charger.BaseTopic)
	out := cmd.OutOrStdout()
	for _, topic := range []string{topics.Status(), topics.Amp(), topics.Volt(), topics.Wh()} {
		if err := client.Subscribe(topic, func(topic string, payload []byte) {
			fmt.Fprintf(out, "%s -> %s\n", topic, payload)
		}); err != nil {
			return err
		}
	}

	<-ctx.Done()
	return nil
}
