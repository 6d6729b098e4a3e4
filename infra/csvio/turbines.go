package csvio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ovrim/windcurb/core/model"
	"github.com/ovrim/windcurb/core/roughness"
)

// ReadTurbines loads the turbine base table. Reference height and loss
// fraction are not part of the table; the caller fills them from
// configuration.
func ReadTurbines(path string) ([]model.TurbineProfile, error) {
	header, rows, err := readTable(path, ',')
	if err != nil {
		return nil, err
	}

	nameIdx, err := columnIndex(path, header, "Asset Name")
	if err != nil {
		return nil, err
	}
	stationIdx, err := columnIndex(path, header, "Nearby_Station")
	if err != nil {
		return nil, err
	}
	modelIdx, err := columnIndex(path, header, "Model")
	if err != nil {
		return nil, err
	}
	hubIdx, err := columnIndex(path, header, "hub_height")
	if err != nil {
		return nil, err
	}
	unitsIdx, err := columnIndex(path, header, "number_of_turbines")
	if err != nil {
		return nil, err
	}
	capIdx, err := columnIndex(path, header, "total_capacity_MW")
	if err != nil {
		return nil, err
	}

	seasonCols := map[roughness.Season]int{}
	for _, season := range []roughness.Season{
		roughness.Summer, roughness.PreHarvest, roughness.PostHarvest,
		roughness.SnowCovered, roughness.Spring,
	} {
		idx, err := columnIndex(path, header, season.String())
		if err != nil {
			return nil, err
		}
		seasonCols[season] = idx
	}

	profiles := make([]model.TurbineProfile, 0, len(rows))
	for i, row := range rows {
		name := field(row, nameIdx)
		if name == "" {
			continue
		}
		hub, err := requireFloat(path, "hub_height", field(row, hubIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		units, err := strconv.Atoi(field(row, unitsIdx))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: column \"number_of_turbines\": %w", path, i+2, err)
		}
		capacityMW, err := requireFloat(path, "total_capacity_MW", field(row, capIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		var tbl roughness.Table
		for season, idx := range seasonCols {
			v, err := requireFloat(path, season.String(), field(row, idx))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			switch season {
			case roughness.Summer:
				tbl.Summer = v
			case roughness.PreHarvest:
				tbl.PreHarvest = v
			case roughness.PostHarvest:
				tbl.PostHarvest = v
			case roughness.SnowCovered:
				tbl.SnowCovered = v
			case roughness.Spring:
				tbl.Spring = v
			}
		}
		profiles = append(profiles, model.TurbineProfile{
			Name:            name,
			Station:         field(row, stationIdx),
			CurveModel:      field(row, modelIdx),
			HubHeight:       hub,
			Units:           units,
			RatedCapacityKW: capacityMW * 1000,
			Roughness:       tbl,
		})
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%s: no turbines found", path)
	}
	return profiles, nil
}

// FindTurbine selects a profile by name, matching case-insensitively
// on substrings the way the base table is usually queried.
func FindTurbine(profiles []model.TurbineProfile, name string) (model.TurbineProfile, error) {
	for _, p := range profiles {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			return p, nil
		}
	}
	return model.TurbineProfile{}, fmt.Errorf("turbine %q not found in configuration", name)
}
