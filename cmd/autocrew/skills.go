package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List discovered skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		crew, err := newCrew()
		if err != nil {
			return err
		}
		defer crew.Close()

		skills := crew.Skills()
		if skills == nil {
			fmt.Println("skills unavailable")
			return nil
		}

		list := skills.List()
		if len(list) == 0 {
			fmt.Printf("no skills found under %s\n", skills.Dir())
			fmt.Println("add one as <name>/SKILL.md with YAML frontmatter (name, description)")
			return nil
		}
		for _, s := range list {
			fmt.Printf("%-20s %s\n", s.Name, s.Description)
		}
		return nil
	},
}
