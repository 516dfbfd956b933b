package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/napolitain/idlekeep/internal/game"
	"github.com/napolitain/idlekeep/internal/loader"
	"github.com/napolitain/idlekeep/internal/models"
	"github.com/napolitain/idlekeep/internal/persistence"
)

func formatCosts(c models.Costs) string {
	parts := make([]string, 0, len(c))
	for _, id := range c.Resources() {
		parts = append(parts, fmt.Sprintf("%s %.0f", id, c[id]))
	}
	return strings.Join(parts, ", ")
}

func formatRates(rates []models.Rate, unit string) string {
	parts := make([]string, 0, len(rates))
	for _, r := range rates {
		parts = append(parts, fmt.Sprintf("%s %g%s", r.Resource, r.Amount, unit))
	}
	return strings.Join(parts, ", ")
}

func formatRequires(req map[models.BuildingID]int) string {
	ids := make([]string, 0, len(req))
	for id := range req {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s x%d", id, req[models.BuildingID(id)])
	}
	return strings.Join(parts, ", ")
}

func lockMark(unlocked bool) string {
	if unlocked {
		return ""
	}
	return "locked"
}

func printResources(defs *models.Definitions) {
	color.New(color.FgCyan, color.Bold).Println("\n📦 Resources")
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"ID", "Name", "Start", "Capacity", "State"}),
	)
	for _, r := range defs.Resources {
		capacity := "-"
		if r.HasCapacity {
			capacity = fmt.Sprintf("%.0f", r.InitialCapacity)
		}
		_ = table.Append([]string{
			string(r.ID), r.Name, fmt.Sprintf("%.0f", r.InitialAmount), capacity, lockMark(r.Unlocked),
		})
	}
	_ = table.Render()
}

func printBuildings(defs *models.Definitions) {
	color.New(color.FgCyan, color.Bold).Println("\n🏗  Buildings")
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"ID", "Name", "Cost", "Scaling", "Produces", "Consumes", "Storage", "Requires", "State"}),
	)
	for _, b := range defs.Buildings {
		_ = table.Append([]string{
			string(b.ID),
			b.Name,
			formatCosts(b.BaseCost),
			fmt.Sprintf("%.2f", b.CostScaling),
			formatRates(b.Produces, "/s"),
			formatRates(b.Consumes, "/s"),
			formatRates(b.Capacity, ""),
			formatRequires(b.Requires),
			lockMark(b.Unlocked),
		})
	}
	_ = table.Render()
}

func printUpgrades(defs *models.Definitions) {
	color.New(color.FgCyan, color.Bold).Println("\n📜 Upgrades")
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"ID", "Name", "Cost", "Effects", "Requires", "State"}),
	)
	for _, u := range defs.Upgrades {
		effects := make([]string, len(u.Effects))
		for i, e := range u.Effects {
			effects[i] = models.Describe(e)
		}
		requires := formatRequires(u.RequiresBuildings)
		for _, p := range u.RequiresUpgrades {
			if requires != "" {
				requires += ", "
			}
			requires += string(p)
		}
		_ = table.Append([]string{
			string(u.ID), u.Name, formatCosts(u.Cost), strings.Join(effects, "; "), requires, lockMark(u.Unlocked),
		})
	}
	_ = table.Render()
}

// printEntry prints the definition matching id, suggesting a near match
// when there is none
func printEntry(defs *models.Definitions, id string) {
	for _, r := range defs.Resources {
		if string(r.ID) == id {
			printResources(&models.Definitions{Resources: []models.ResourceDefinition{r}})
			return
		}
	}
	for _, b := range defs.Buildings {
		if string(b.ID) == id {
			printBuildings(&models.Definitions{Buildings: []models.BuildingDefinition{b}})
			return
		}
	}
	for _, u := range defs.Upgrades {
		if string(u.ID) == id {
			printUpgrades(&models.Definitions{Upgrades: []models.UpgradeDefinition{u}})
			return
		}
	}

	var all []string
	all = append(all, defs.ResourceIDs()...)
	all = append(all, defs.BuildingIDs()...)
	all = append(all, defs.UpgradeIDs()...)
	fail("%v", loader.UnknownIDError("entry", id, all))
}

func printState(v game.View) {
	infoColor := color.New(color.FgYellow)

	infoColor.Println("📊 Resources:")
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Resource", "Amount", "Capacity", "Production/s", "Consumption/s", "Net/s"}),
	)
	for _, r := range v.Resources {
		capacity := "-"
		if r.HasCapacity {
			capacity = fmt.Sprintf("%.0f", r.Capacity)
		}
		_ = table.Append([]string{
			r.Name,
			fmt.Sprintf("%.1f", r.Amount),
			capacity,
			fmt.Sprintf("%.2f", r.Production),
			fmt.Sprintf("%.2f", r.Consumption),
			fmt.Sprintf("%+.2f", r.Net),
		})
	}
	_ = table.Render()

	fmt.Println()
	infoColor.Println("🏗  Buildings:")
	table = tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Building", "Count", "Next Cost"}),
	)
	for _, b := range v.Buildings {
		_ = table.Append([]string{b.Name, fmt.Sprintf("%d", b.Count), formatCosts(b.Cost)})
	}
	_ = table.Render()

	if len(v.Upgrades) > 0 {
		fmt.Println()
		infoColor.Println("📜 Available upgrades:")
		for _, u := range v.Upgrades {
			fmt.Printf("   %-20s %s\n", u.Name, formatCosts(u.Cost))
		}
	}
}

func printSave(rec persistence.Record, snap game.Snapshot, verified bool) {
	titleColor := color.New(color.FgCyan, color.Bold)
	titleColor.Printf("\n💾 Slot %q\n", rec.Slot)

	fmt.Printf("   Session:  %s\n", rec.Session)
	fmt.Printf("   Saved at: %s\n", rec.SavedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("   Tick:     %d\n", snap.Time.Tick)
	fmt.Printf("   Size:     %d bytes\n", len(rec.Blob))
	if verified {
		color.Green("   Checksum: %s (ok)", rec.Checksum)
	} else {
		color.Red("   Checksum: %s (mismatch, will load anyway)", rec.Checksum)
	}
	fmt.Println()

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Resource", "Amount", "Capacity", "Unlocked"}),
	)
	for _, r := range snap.Resources {
		_ = table.Append([]string{
			string(r.ID), fmt.Sprintf("%.1f", r.Amount), fmt.Sprintf("%.0f", r.Capacity), fmt.Sprintf("%v", r.Unlocked),
		})
	}
	_ = table.Render()

	var built []string
	for _, b := range snap.Buildings {
		if b.Count > 0 {
			built = append(built, fmt.Sprintf("%s x%d", b.ID, b.Count))
		}
	}
	var bought []string
	for _, u := range snap.Upgrades {
		if u.Purchased {
			bought = append(bought, string(u.ID))
		}
	}
	fmt.Printf("\n   Buildings: %s\n", strings.Join(built, ", "))
	fmt.Printf("   Upgrades:  %s\n", strings.Join(bought, ", "))
}
