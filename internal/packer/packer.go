package packer

import (
	"errors"
	"fmt"
	"sort"
)

// MaxPackageWeightG - предел суммарного веса одной отгрузки
const MaxPackageWeightG = 1800

var ErrOversizedUnit = errors.New("single unit exceeds maximum package weight")

// Line - позиция к отгрузке
type Line struct {
	ProductID    int64
	Quantity     int64
	UnitWeightG  int
	TotalWeightG int
}

func NewLine(productID int64, quantity int64, unitWeightG int) Line {
	return Line{
		ProductID:    productID,
		Quantity:     quantity,
		UnitWeightG:  unitWeightG,
		TotalWeightG: unitWeightG * int(quantity),
	}
}

// Package - упаковка в пределах весового лимита
type Package struct {
	Lines        []Line
	TotalWeightG int
}

func (p *Package) fits(line Line) bool {
	return p.TotalWeightG+line.TotalWeightG <= MaxPackageWeightG
}

func (p *Package) add(line Line) {
	p.Lines = append(p.Lines, line)
	p.TotalWeightG += line.TotalWeightG
}

// Pack раскладывает позиции по упаковкам жадным алгоритмом
// first-fit decreasing:
//  1. позиции тяжелее лимита режутся на части, умещающиеся в упаковку
//  2. сортировка по убыванию суммарного веса (стабильная)
//  3. каждая позиция кладется в первую упаковку, где хватает места,
//     иначе открывается новая
func Pack(lines []Line) ([]Package, error) {
	processed := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.TotalWeightG <= MaxPackageWeightG {
			processed = append(processed, line)
			continue
		}
		split, err := splitOversized(line)
		if err != nil {
			return nil, err
		}
		processed = append(processed, split...)
	}

	sort.SliceStable(processed, func(i, j int) bool {
		return processed[i].TotalWeightG > processed[j].TotalWeightG
	})

	var packages []Package
	for _, line := range processed {
		placed := false
		for i := range packages {
			if packages[i].fits(line) {
				packages[i].add(line)
				placed = true
				break
			}
		}
		if !placed {
			// после нарезки любая позиция умещается в пустую упаковку
			pkg := Package{}
			pkg.add(line)
			packages = append(packages, pkg)
		}
	}

	return packages, nil
}

// Нарезка позиции, не умещающейся в одну упаковку
func splitOversized(line Line) ([]Line, error) {
	maxQtyPerPackage := int64(MaxPackageWeightG / line.UnitWeightG)
	if maxQtyPerPackage == 0 {
		return nil, fmt.Errorf("%w: product %d unit weight %dg",
			ErrOversizedUnit, line.ProductID, line.UnitWeightG)
	}

	var split []Line
	remaining := line.Quantity
	for remaining > 0 {
		qty := min(remaining, maxQtyPerPackage)
		split = append(split, NewLine(line.ProductID, qty, line.UnitWeightG))
		remaining -= qty
	}
	return split, nil
}

// IsValidPackageWeight проверяет вес против лимита
func IsValidPackageWeight(totalWeightG int) bool {
	return totalWeightG <= MaxPackageWeightG
}
