package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/structeye/internal/api/client"
	"github.com/structeye/internal/ml"
	"github.com/structeye/internal/models"
)

func NewModelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "model",
		Short:   "Classifier model commands",
		Aliases: []string{"models", "m"},
	}

	cmd.AddCommand(newModelTrainCommand())
	cmd.AddCommand(newModelInfoCommand())

	return cmd
}

func newModelTrainCommand() *cobra.Command {
	var (
		kind          string
		contamination float64
		nu            float64
		seed          int64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a new outlier model",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			params := ml.Params{
				Contamination: contamination,
				Nu:            nu,
				Seed:          seed,
			}
			snapshot, err := c.TrainModel(models.ClassifierKind(kind), params)
			if err != nil {
				return fmt.Errorf("failed to train model: %v", err)
			}

			fmt.Printf("Trained %s (%s) on %d samples\n", snapshot.Name, snapshot.Kind, snapshot.TrainingDataSize)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(models.KindIsolationForest), "Classifier kind (isolation-forest/one-class-boundary)")
	cmd.Flags().Float64Var(&contamination, "contamination", 0, "Expected outlier fraction for isolation-forest")
	cmd.Flags().Float64Var(&nu, "nu", 0, "Boundary looseness for one-class-boundary")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 uses the default)")
	return cmd
}

func newModelInfoCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the active model snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			snapshot, err := c.ModelInfo(models.ClassifierKind(kind))
			if err != nil {
				return fmt.Errorf("failed to fetch model info: %v", err)
			}

			fmt.Printf("Name:          %s\n", snapshot.Name)
			fmt.Printf("Kind:          %s\n", snapshot.Kind)
			fmt.Printf("Trained on:    %d samples\n", snapshot.TrainingDataSize)
			fmt.Printf("Created at:    %s\n", snapshot.CreatedAt)
			fmt.Printf("Active:        %t\n", snapshot.IsActive)
			fmt.Printf("Params:        %s\n", snapshot.Params)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(models.KindIsolationForest), "Classifier kind")
	return cmd
}
