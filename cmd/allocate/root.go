package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/BraeWebb/allocate/internal/config"
	"github.com/BraeWebb/allocate/internal/logger"
	"github.com/BraeWebb/allocate/pkg/model"
	"github.com/BraeWebb/allocate/pkg/tabular"
)

var (
	cfgPath            string
	doodle             bool
	stub               bool
	updateAvailability bool
	jsonOutput         bool
	tableOutput        bool
	allocationPath     string
)

var rootCmd = &cobra.Command{
	Use:   "allocate <tutors.csv> <sessions.csv> <availability.csv>",
	Short: "Allocate tutors to sessions",
	Args:  cobra.ExactArgs(3),
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "solver configuration file (yaml or json)")
	rootCmd.Flags().BoolVar(&doodle, "doodle", false, "parse the availability table as a doodle export")
	rootCmd.Flags().BoolVar(&stub, "stub", false, "write stub tutor and session files generated from the availability file")
	rootCmd.Flags().BoolVar(&updateAvailability, "update-availability", false, "allocate tutors and print the availability table with the allocation applied")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "output the allocation as a JSON object instead of CSV")
	rootCmd.Flags().BoolVar(&tableOutput, "table", false, "display the allocation as a timetable of a regular week")
	rootCmd.Flags().StringVar(&allocationPath, "allocation", "", "CSV file with an existing allocation to validate and refine")
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.New("allocate")
	tutorsPath, sessionsPath, availabilityPath := args[0], args[1], args[2]

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	availability, err := tabular.LoadAvailability(availabilityPath, doodle)
	if err != nil {
		return fmt.Errorf("load availability: %w", err)
	}

	if stub {
		if err := tabular.WriteStubs(tutorsPath, sessionsPath, availability); err != nil {
			return fmt.Errorf("write stubs: %w", err)
		}
		log.Infof("wrote stub files %v and %v", tutorsPath, sessionsPath)
		return nil
	}

	tutors, err := tabular.LoadTutors(tutorsPath)
	if err != nil {
		return fmt.Errorf("load tutors: %w", err)
	}
	sessions, err := tabular.LoadSessions(sessionsPath)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	names := lo.Map(tutors, func(tutor model.Tutor, _ int) string { return tutor.Name })
	input, err := model.NewModelInput(tutors, sessions, availability.ToMatrix(names, sessions))
	if err != nil {
		return err
	}

	for _, warning := range model.AvailabilityWarnings(input) {
		log.Warnf("%v", warning)
	}

	modelCfg := cfg.ModelConfig()
	if allocationPath != "" {
		seed, err := tabular.LoadAllocation(allocationPath)
		if err != nil {
			return fmt.Errorf("load allocation: %w", err)
		}
		modelCfg.Seed = seed
	}

	allocator := model.NewBacktrackingAllocator(modelCfg)
	allocation, err := allocator.Build(input)
	if err != nil {
		var infeasible model.InfeasibleError
		if errors.As(err, &infeasible) {
			log.Errorf("no allocation was found because the instance is infeasible")
			for _, violation := range infeasible.Violations {
				log.Errorf("%v", violation.Message)
			}
		}
		return err
	}

	switch {
	case updateAvailability:
		return availability.Project(allocation, sessions).Render(os.Stdout)
	case tableOutput:
		return tabular.RenderTable(os.Stdout, allocation, sessions)
	case jsonOutput:
		result := make(map[string][]string, len(allocation))
		for _, tutor := range allocation.Tutors() {
			result[tutor] = allocation.Sessions(tutor)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	default:
		return tabular.RenderAllocation(os.Stdout, allocation)
	}
}
