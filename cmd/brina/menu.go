package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/tui"
)

// menuFile accepts either a bare list of products or a {products: [...]} document.
type menuFile struct {
	Products []service.ProductInput `yaml:"products"`
}

func parseMenu(data []byte) ([]service.ProductInput, error) {
	var list []service.ProductInput
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list, nil
	}
	var doc menuFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	if len(doc.Products) == 0 {
		return nil, errors.New("menu file has no products")
	}
	return doc.Products, nil
}

func init() {
	var menuCmd = &cobra.Command{
		Use:   "menu",
		Short: "Menu management",
	}

	menuCmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update dishes from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			inputs, err := parseMenu(data)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				res, err := a.services.API.AdminProduct.Import(ctx, inputs)
				if err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				fmt.Printf("Menu imported: %d created, %d updated.\n", res.Created, res.Updated)
				return nil
			})
		},
	})

	var category string
	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List dishes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				products, err := a.services.API.AdminProduct.List(ctx, category)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "ID\tName\tCategory\tPrice\tAvailable")
				for _, p := range products {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%v\n", p.ID, p.Name, p.Category, tui.FormatPrice(p.Price), p.Available)
				}
				return w.Flush()
			})
		},
	}
	listCmd.Flags().StringVar(&category, "category", "", "Filter by category")
	menuCmd.AddCommand(listCmd)

	rootCmd.AddCommand(menuCmd)
}
