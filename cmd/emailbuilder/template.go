package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/foxzi/emailbuilder/internal/client"
	"github.com/foxzi/emailbuilder/internal/template"
)

var (
	serverURL       string
	templateTitle   string
	templateContent string
	templateImage   string
	contentFile     string
	renderOutput    string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Template commands against a running server",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all templates",
	RunE:  runTemplateList,
}

var templateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new template",
	RunE:  runTemplateCreate,
}

var templateUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace title, content and image of a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateUpdate,
}

var templateUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an image and print its public URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateUpload,
}

var templateRenderCmd = &cobra.Command{
	Use:   "render <id>",
	Short: "Render a saved template to an HTML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateRender,
}

func init() {
	templateCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:3001", "Email Builder server URL")

	for _, cmd := range []*cobra.Command{templateCreateCmd, templateUpdateCmd} {
		cmd.Flags().StringVar(&templateTitle, "title", "", "Template title (required)")
		cmd.Flags().StringVar(&templateContent, "content", "", "Template content")
		cmd.Flags().StringVar(&contentFile, "content-file", "", "Read template content from file")
		cmd.Flags().StringVar(&templateImage, "image", "", "Image URL")
		cmd.MarkFlagRequired("title")
		cmd.MarkFlagsMutuallyExclusive("content", "content-file")
	}

	templateRenderCmd.Flags().StringVarP(&renderOutput, "output", "o", "template.html", "Output file")

	templateCmd.AddCommand(
		templateListCmd,
		templateCreateCmd,
		templateUpdateCmd,
		templateUploadCmd,
		templateRenderCmd,
	)
	rootCmd.AddCommand(templateCmd)
}

func templateFields() (template.Fields, error) {
	content := templateContent
	if contentFile != "" {
		data, err := os.ReadFile(contentFile)
		if err != nil {
			return template.Fields{}, fmt.Errorf("failed to read content file: %w", err)
		}
		content = string(data)
	}

	f := template.Fields{Title: templateTitle, Content: content, Image: templateImage}
	if err := f.Validate(); err != nil {
		return template.Fields{}, err
	}
	return f, nil
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	templates, err := client.New(serverURL).List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	if len(templates) == 0 {
		fmt.Println("No templates found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tIMAGE\tCREATED")
	for _, tmpl := range templates {
		title := tmpl.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		image := "-"
		if tmpl.Image != "" {
			image = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			tmpl.ID,
			title,
			image,
			tmpl.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d templates\n", len(templates))
	return nil
}

func runTemplateCreate(cmd *cobra.Command, args []string) error {
	f, err := templateFields()
	if err != nil {
		return err
	}

	if err := client.New(serverURL).Create(cmd.Context(), f); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	fmt.Printf("Template created successfully\n")
	fmt.Printf("  Title: %s\n", f.Title)
	return nil
}

func runTemplateUpdate(cmd *cobra.Command, args []string) error {
	f, err := templateFields()
	if err != nil {
		return err
	}

	tmpl, err := client.New(serverURL).Update(cmd.Context(), args[0], f)
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("template not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	fmt.Printf("Template updated successfully\n")
	fmt.Printf("  ID:    %s\n", tmpl.ID)
	fmt.Printf("  Title: %s\n", tmpl.Title)
	return nil
}

func runTemplateUpload(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	url, err := client.New(serverURL).UploadImage(cmd.Context(), filepath.Base(args[0]), f)
	if err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}

	fmt.Println(url)
	return nil
}

func runTemplateRender(cmd *cobra.Command, args []string) error {
	c := client.New(serverURL)

	templates, err := c.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	var tmpl *template.Template
	for _, t := range templates {
		if t.ID == args[0] {
			tmpl = t
			break
		}
	}
	if tmpl == nil {
		return fmt.Errorf("template not found: %s", args[0])
	}

	html, err := c.Render(cmd.Context(), tmpl.Fields())
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	if err := os.WriteFile(renderOutput, html, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("Template rendered to %s\n", renderOutput)
	return nil
}
