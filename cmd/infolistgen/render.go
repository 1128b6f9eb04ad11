package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"kalita/internal/dsl"
	"kalita/internal/entry"
	"kalita/internal/lang"
	"kalita/internal/record"
	"kalita/internal/schema"
)

func newRenderCmd() *cobra.Command {
	var (
		assetURL string
		langDir  string
		locale   string
	)
	cmd := &cobra.Command{
		Use:   "render <module.Infolist> <record.json>",
		Short: "Render an infolist for a JSON record fixture",
		Long: `Render an infolist for a JSON record fixture.
Fields of the infolist's entity that are ref[...] take a nested object,
array[ref[...]] fields take an array of objects.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("dsl")
			model, err := dsl.LoadAll(root)
			if err != nil {
				return err
			}
			def, ok := model.Infolists[args[0]]
			if !ok {
				return fmt.Errorf("infolist %q not found in %s", args[0], root)
			}
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if !gjson.ValidBytes(raw) {
				return fmt.Errorf("%s: invalid JSON", args[1])
			}

			opts := schema.Options{AssetURL: entry.AssetBase(assetURL)}
			if langDir != "" {
				catalogs, err := lang.LoadDir(langDir)
				if err != nil {
					return err
				}
				opts.Translate = catalogs.Translator(locale)
			}

			out, err := render(def, model.Entities, gjson.ParseBytes(raw), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&assetURL, "asset-url", entry.DefaultAssetBase, "Base URL for relative image paths")
	cmd.Flags().StringVar(&langDir, "lang", "", "Path to translation catalogs")
	cmd.Flags().StringVar(&locale, "locale", lang.DefaultLocale, "Locale for labels")
	return cmd
}

func render(def *dsl.Infolist, entities map[string]*dsl.Entity, doc gjson.Result, opts schema.Options) ([]byte, error) {
	l, err := schema.Build(def, opts)
	if err != nil {
		return nil, err
	}
	props, err := l.Render(fixtureRecord(doc, entities[def.EntityFQN()], entities))
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(props, "", "  ")
}

// fixtureRecord: ref-поля сущности становятся связями, остальное - атрибутами.
// Без сущности вложенные объекты и массивы объектов считаются связями.
func fixtureRecord(doc gjson.Result, ent *dsl.Entity, entities map[string]*dsl.Entity) *record.MapRecord {
	rec := record.FromMap(map[string]any{})
	doc.ForEach(func(key, value gjson.Result) bool {
		name := key.String()

		var (
			target   *dsl.Entity
			relation bool
		)
		if ent != nil {
			if f, ok := ent.Field(name); ok && f.IsRelation() {
				target, relation = entities[dsl.Qualify(ent.Module, f.RefTarget)], true
			}
		} else {
			relation = value.IsObject() || (value.IsArray() && value.Get("0").IsObject())
		}

		switch {
		case relation && value.IsObject():
			rec.SetRelation(name, fixtureRecord(value, target, entities))
		case relation && value.IsArray():
			coll := record.Collection{}
			for _, item := range value.Array() {
				coll = append(coll, fixtureRecord(item, target, entities))
			}
			rec.SetRelation(name, coll)
		case relation && value.Type == gjson.Null:
			rec.SetRelation(name, nil)
		default:
			rec.Attrs[name] = value.Value()
		}
		return true
	})
	return rec
}
