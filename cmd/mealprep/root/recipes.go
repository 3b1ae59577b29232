package root

import (
	"github.com/spf13/cobra"
)

var (
	planDays     int
	planServings int
)

var cuisinesCmd = &cobra.Command{
	Use:   "cuisines",
	Short: "List available cuisines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.Cuisines()
	},
}

var recipesCmd = &cobra.Command{
	Use:   "recipes <cuisine>",
	Short: "Show every recipe of a cuisine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.Recipes(args[0])
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <cuisine>",
	Short: "Generate a meal plan with shopping list and preparation tips",
	Example: "  mealprep plan Italian\n" +
		"  mealprep plan Thai --days 3 --servings 2",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		days, servings := a.Config().Planner.DefaultDays, a.Config().Planner.DefaultServings
		if cmd.Flags().Changed("days") {
			days = planDays
		}
		if cmd.Flags().Changed("servings") {
			servings = planServings
		}
		return a.Plan(args[0], days, servings)
	},
}

var weekCmd = &cobra.Command{
	Use:   "week <cuisine>",
	Short: "Generate the standard seven day plan for four people",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.WeeklyPlan(args[0])
	},
}

var overlapCmd = &cobra.Command{
	Use:   "overlap <cuisine>",
	Short: "List ingredients shared by several recipes of a cuisine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.Overlap(args[0])
	},
}

func init() {
	rootCmd.AddCommand(cuisinesCmd, recipesCmd, planCmd, weekCmd, overlapCmd)

	planCmd.Flags().IntVar(&planDays, "days", 7, "Number of days to plan (default from config)")
	planCmd.Flags().IntVar(&planServings, "servings", 4, "Servings per meal (default from config)")
}
