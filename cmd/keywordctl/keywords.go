package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spacesedan/courtsense/internal/db"
	"github.com/spacesedan/courtsense/internal/keywords"
	"github.com/spacesedan/courtsense/internal/models"
)

type appFunc func() *app

type filterFlags struct {
	language string
	polarity string
	active   bool
	inactive bool
	category int64
	search   string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "only keywords of this language")
	cmd.Flags().StringVarP(&f.polarity, "type", "t", "", "positive, negative or strong_negative")
	cmd.Flags().BoolVar(&f.active, "active", false, "only active keywords")
	cmd.Flags().BoolVar(&f.inactive, "inactive", false, "only inactive keywords")
	cmd.Flags().Int64Var(&f.category, "category", 0, "only keywords of this category id")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "substring of the keyword text")
	cmd.MarkFlagsMutuallyExclusive("active", "inactive")
}

func (f *filterFlags) filter() (models.KeywordFilter, error) {
	filter := models.KeywordFilter{Language: f.language, Search: f.search}
	if f.polarity != "" {
		p := models.PolarityClass(f.polarity)
		if !p.Valid() {
			return filter, fmt.Errorf("invalid --type %q", f.polarity)
		}
		filter.Polarity = p
	}
	if f.active || f.inactive {
		active := f.active
		filter.Active = &active
	}
	if f.category > 0 {
		filter.CategoryID = &f.category
	}
	return filter, nil
}

func newListCmd(get appFunc) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			kws, err := a.accessor.ListKeywords(cmd.Context(), filter)
			if err != nil {
				return describeError(err)
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKEYWORD\tTYPE\tWEIGHT\tLANG\tACTIVE\tCATEGORY")
			for _, kw := range kws {
				category := "-"
				if kw.CategoryID != nil {
					category = strconv.FormatInt(*kw.CategoryID, 10)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
					kw.ID, kw.Text, kw.Polarity, strconv.FormatFloat(kw.Weight, 'f', -1, 64),
					kw.Language, kw.Active, category)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d keyword(s)\n", len(kws))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newAddCmd(get appFunc) *cobra.Command {
	var (
		polarity string
		weight   float64
		language string
		category int64
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "add <keyword>",
		Short: "Add a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			in := models.KeywordInput{
				Text:     args[0],
				Polarity: models.PolarityClass(polarity),
				Language: language,
			}
			if cmd.Flags().Changed("weight") {
				in.Weight = &weight
			}
			if category > 0 {
				in.CategoryID = &category
			}
			if inactive {
				active := false
				in.Active = &active
			}

			kw, err := a.accessor.AddKeyword(cmd.Context(), in, flagActor)
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(a.out, "Added keyword %d: %s (%s, w:%s, %s)\n",
				kw.ID, kw.Text, kw.Polarity, strconv.FormatFloat(kw.Weight, 'f', -1, 64), kw.Language)
			return nil
		},
	}
	cmd.Flags().StringVarP(&polarity, "type", "t", "", "positive, negative or strong_negative")
	cmd.Flags().Float64VarP(&weight, "weight", "w", keywords.DefaultWeight, "weight between 0.1 and 2.0")
	cmd.Flags().StringVarP(&language, "language", "l", keywords.DefaultLanguage, "language of the keyword")
	cmd.Flags().Int64Var(&category, "category", 0, "category id")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "add the keyword deactivated")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newUpdateCmd(get appFunc) *cobra.Command {
	var (
		text     string
		polarity string
		weight   float64
		category int64
		active   bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			var patch models.KeywordPatch
			if cmd.Flags().Changed("keyword") {
				patch.Text = &text
			}
			if cmd.Flags().Changed("type") {
				p := models.PolarityClass(polarity)
				patch.Polarity = &p
			}
			if cmd.Flags().Changed("weight") {
				patch.Weight = &weight
			}
			if cmd.Flags().Changed("category") {
				patch.CategoryID = &category
			}
			if cmd.Flags().Changed("active") {
				patch.Active = &active
			}

			if err := a.accessor.UpdateKeyword(cmd.Context(), ids[0], patch, flagActor); err != nil {
				return describeError(err)
			}
			fmt.Fprintf(a.out, "Updated keyword %d\n", ids[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "keyword", "", "new keyword text")
	cmd.Flags().StringVarP(&polarity, "type", "t", "", "positive, negative or strong_negative")
	cmd.Flags().Float64VarP(&weight, "weight", "w", 0, "weight between 0.1 and 2.0")
	cmd.Flags().Int64Var(&category, "category", 0, "category id")
	cmd.Flags().BoolVar(&active, "active", true, "whether the keyword is used for scoring")
	return cmd
}

func newDeleteCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			if len(ids) == 1 {
				if err := a.accessor.DeleteKeyword(cmd.Context(), ids[0]); err != nil {
					return describeError(err)
				}
				fmt.Fprintf(a.out, "Deleted keyword %d\n", ids[0])
				return nil
			}

			n, err := a.accessor.BulkDelete(cmd.Context(), ids)
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(a.out, "Deleted %d of %d keyword(s)\n", n, len(ids))
			return nil
		},
	}
}

func newSetActiveCmd(get appFunc, active bool) *cobra.Command {
	use, verb := "deactivate", "Deactivated"
	if active {
		use, verb = "activate", "Activated"
	}

	return &cobra.Command{
		Use:   use + " <id>...",
		Short: verb + " keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			n, err := a.accessor.SetActive(cmd.Context(), ids, active, flagActor)
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(a.out, "%s %d keyword(s)\n", verb, n)
			return nil
		},
	}
}

func newExportCmd(get appFunc) *cobra.Command {
	var (
		flags  filterFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export keywords as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			filter, err := flags.filter()
			if err != nil {
				return err
			}

			w := a.out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			n, err := a.accessor.Export(cmd.Context(), w, keywords.ExportFormat(format), filter)
			if err != nil {
				return describeError(err)
			}
			if w != a.out {
				fmt.Fprintf(a.out, "Exported %d keyword(s) to %s\n", n, output)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(keywords.ExportCSV), "csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, stdout when empty")
	return cmd
}

func newReseedCmd(get appFunc) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reseed",
		Short: "Replace every keyword with the built-in default lexicon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if !yes {
				return fmt.Errorf("reseed deletes every keyword; rerun with --yes to confirm")
			}
			n, err := a.accessor.Reseed(cmd.Context(), flagActor)
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(a.out, "Reseeded %d keyword(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm replacing the lexicon")
	return cmd
}

func newCategoriesCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List keyword categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			cats, err := a.accessor.ListCategories(cmd.Context())
			if err != nil {
				return describeError(err)
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tACTIVE\tDESCRIPTION")
			for _, c := range cats {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", c.ID, c.Name, c.Color, c.Active, c.Description)
			}
			return tw.Flush()
		},
	}
}

func newMigrateCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the keyword tables if they are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if a.pool == nil {
				return fmt.Errorf("migrate needs a database connection")
			}
			if err := db.Migrate(cmd.Context(), a.pool); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			fmt.Fprintln(a.out, "Schema is up to date")
			return nil
		},
	}
}
