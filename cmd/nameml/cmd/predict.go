package cmd

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/nameml/preprocessing"
)

func newPredictCmd(a *app) *cobra.Command {
	var (
		f      trainFlags
		record preprocessing.DemographicRecord
		gender string
		edu    string
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Train a model, then rank names for one demographic record",
		Example: `  nameml predict --age 28 --gender female --location Northeast \
    --education bachelors --ethnicity Hispanic --model neuralNetwork`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record.Gender = preprocessing.Gender(gender)
			record.EducationLevel = preprocessing.EducationLevel(edu)

			svc := a.service()
			if _, err := a.train(cmd.Context(), svc, f.options()); err != nil {
				return err
			}
			res, err := svc.Predict(cmd.Context(), record)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&record.Age, "age", 0, "age in years")
	cmd.Flags().StringVar(&gender, "gender", "", "male, female, nonbinary or other")
	cmd.Flags().StringVar(&record.Location, "location", "", "Northeast, Midwest, South or West")
	cmd.Flags().StringVar(&edu, "education", "", "high-school, some-college, bachelors, masters or doctorate")
	cmd.Flags().StringVar(&record.Ethnicity, "ethnicity", "", "White, Black, Hispanic, Asian or Middle Eastern")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("gender")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}
