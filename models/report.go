package models

import (
	"context"
	"sort"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/shopspring/decimal"
)

// ReportSourceRow is one document item flattened for aggregation: a purchase
// bill item (materials added) or a material issue / site-delivered bill item
// (materials distributed to a site).
type ReportSourceRow struct {
	MaterialId   int             `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	SiteId       int             `json:"site_id"`
	SiteName     string          `json:"site_name"`
	Qty          decimal.Decimal `json:"qty"`
	Amount       decimal.Decimal `json:"amount"`
}

type SiteWiseMaterial struct {
	MaterialId   int             `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Qty          decimal.Decimal `json:"qty"`
	Amount       decimal.Decimal `json:"amount"`
}

type SiteWiseReport struct {
	SiteId      int                `json:"site_id"`
	SiteName    string             `json:"site_name"`
	Materials   []SiteWiseMaterial `json:"materials"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
}

type MaterialSiteBreakdown struct {
	SiteId   int             `json:"site_id"`
	SiteName string          `json:"site_name"`
	Qty      decimal.Decimal `json:"qty"`
	Amount   decimal.Decimal `json:"amount"`
}

type MaterialWiseReport struct {
	MaterialId       int                     `json:"material_id"`
	MaterialName     string                  `json:"material_name"`
	Unit             string                  `json:"unit"`
	TotalAdded       decimal.Decimal         `json:"total_added"`
	TotalDistributed decimal.Decimal         `json:"total_distributed"`
	Remaining        decimal.Decimal         `json:"remaining"`
	Sites            []MaterialSiteBreakdown `json:"sites"`
}

// AggregateSiteWise groups distributed rows by site and material.
// Per-site totals sum the material amounts.
func AggregateSiteWise(rows []ReportSourceRow) []SiteWiseReport {

	type siteAcc struct {
		name      string
		materials map[int]*SiteWiseMaterial
	}
	sites := make(map[int]*siteAcc)
	for _, row := range rows {
		site, ok := sites[row.SiteId]
		if !ok {
			site = &siteAcc{name: row.SiteName, materials: make(map[int]*SiteWiseMaterial)}
			sites[row.SiteId] = site
		}
		material, ok := site.materials[row.MaterialId]
		if !ok {
			material = &SiteWiseMaterial{
				MaterialId:   row.MaterialId,
				MaterialName: row.MaterialName,
				Unit:         row.Unit,
			}
			site.materials[row.MaterialId] = material
		}
		material.Qty = material.Qty.Add(row.Qty)
		material.Amount = material.Amount.Add(row.Amount)
	}

	var reports []SiteWiseReport
	for siteId, site := range sites {
		report := SiteWiseReport{SiteId: siteId, SiteName: site.name}
		for _, material := range site.materials {
			report.Materials = append(report.Materials, *material)
			report.TotalAmount = report.TotalAmount.Add(material.Amount)
		}
		sort.Slice(report.Materials, func(i, j int) bool {
			return report.Materials[i].MaterialName < report.Materials[j].MaterialName
		})
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].SiteName < reports[j].SiteName
	})
	return reports
}

// AggregateMaterialWise combines added and distributed rows per material.
// Remaining = added - distributed; it matches the ledger's net stock for the
// material because every ledger entry descends from exactly one document item.
func AggregateMaterialWise(added []ReportSourceRow, distributed []ReportSourceRow) []MaterialWiseReport {

	type materialAcc struct {
		report MaterialWiseReport
		sites  map[int]*MaterialSiteBreakdown
	}
	materials := make(map[int]*materialAcc)
	get := func(row ReportSourceRow) *materialAcc {
		material, ok := materials[row.MaterialId]
		if !ok {
			material = &materialAcc{
				report: MaterialWiseReport{
					MaterialId:   row.MaterialId,
					MaterialName: row.MaterialName,
					Unit:         row.Unit,
				},
				sites: make(map[int]*MaterialSiteBreakdown),
			}
			materials[row.MaterialId] = material
		}
		return material
	}

	for _, row := range added {
		material := get(row)
		material.report.TotalAdded = material.report.TotalAdded.Add(row.Qty)
	}
	for _, row := range distributed {
		material := get(row)
		material.report.TotalDistributed = material.report.TotalDistributed.Add(row.Qty)
		site, ok := material.sites[row.SiteId]
		if !ok {
			site = &MaterialSiteBreakdown{SiteId: row.SiteId, SiteName: row.SiteName}
			material.sites[row.SiteId] = site
		}
		site.Qty = site.Qty.Add(row.Qty)
		site.Amount = site.Amount.Add(row.Amount)
	}

	var reports []MaterialWiseReport
	for _, material := range materials {
		report := material.report
		report.Remaining = report.TotalAdded.Sub(report.TotalDistributed)
		for _, site := range material.sites {
			report.Sites = append(report.Sites, *site)
		}
		sort.Slice(report.Sites, func(i, j int) bool {
			return report.Sites[i].SiteName < report.Sites[j].SiteName
		})
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].MaterialName < reports[j].MaterialName
	})
	return reports
}

// distributed = material issues plus bills delivered straight to a site
const distributedRowsQuery = `
SELECT mii.material_id AS material_id,
       m.name AS material_name,
       m.unit AS unit,
       mi.site_id AS site_id,
       s.name AS site_name,
       mii.qty AS qty,
       mii.amount AS amount
FROM material_issue_items mii
JOIN material_issues mi ON mi.id = mii.material_issue_id
JOIN materials m ON m.id = mii.material_id
JOIN sites s ON s.id = mi.site_id
WHERE (? IS NULL OR mi.site_id = ?)
  AND (? IS NULL OR mii.material_id = ?)
  AND (? IS NULL OR mi.issue_date >= ?)
  AND (? IS NULL OR mi.issue_date <= ?)
UNION ALL
SELECT pbi.material_id,
       m.name,
       m.unit,
       pb.site_id,
       s.name,
       pbi.qty,
       pbi.amount
FROM purchase_bill_items pbi
JOIN purchase_bills pb ON pb.id = pbi.purchase_bill_id
JOIN materials m ON m.id = pbi.material_id
JOIN sites s ON s.id = pb.site_id
WHERE pb.delivered_to = 'SITE'
  AND (? IS NULL OR pb.site_id = ?)
  AND (? IS NULL OR pbi.material_id = ?)
  AND (? IS NULL OR pb.bill_date >= ?)
  AND (? IS NULL OR pb.bill_date <= ?)
`

const addedRowsQuery = `
SELECT pbi.material_id AS material_id,
       m.name AS material_name,
       m.unit AS unit,
       0 AS site_id,
       '' AS site_name,
       pbi.qty AS qty,
       pbi.amount AS amount
FROM purchase_bill_items pbi
JOIN purchase_bills pb ON pb.id = pbi.purchase_bill_id
JOIN materials m ON m.id = pbi.material_id
WHERE (? IS NULL OR pbi.material_id = ?)
  AND (? IS NULL OR pb.bill_date >= ?)
  AND (? IS NULL OR pb.bill_date <= ?)
`

func fetchDistributedRows(ctx context.Context, siteId *int, materialId *int, fromDate *time.Time, toDate *time.Time) ([]ReportSourceRow, error) {
	db := config.GetDB()
	var rows []ReportSourceRow
	err := db.WithContext(ctx).Raw(distributedRowsQuery,
		siteId, siteId, materialId, materialId, fromDate, fromDate, toDate, toDate,
		siteId, siteId, materialId, materialId, fromDate, fromDate, toDate, toDate,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func fetchAddedRows(ctx context.Context, materialId *int, fromDate *time.Time, toDate *time.Time) ([]ReportSourceRow, error) {
	db := config.GetDB()
	var rows []ReportSourceRow
	err := db.WithContext(ctx).Raw(addedRowsQuery,
		materialId, materialId, fromDate, fromDate, toDate, toDate,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SiteWiseReportQuery reports what each site has consumed, grouped by material.
// Pass a nil siteId for all sites.
func SiteWiseReportQuery(ctx context.Context, siteId *int, fromDate *time.Time, toDate *time.Time) ([]SiteWiseReport, error) {
	rows, err := fetchDistributedRows(ctx, siteId, nil, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return AggregateSiteWise(rows), nil
}

// MaterialWiseReportQuery reports, per material, how much was purchased, how
// much went to sites (with a per-site breakdown) and what remains in stock.
func MaterialWiseReportQuery(ctx context.Context, materialId *int, fromDate *time.Time, toDate *time.Time) ([]MaterialWiseReport, error) {
	added, err := fetchAddedRows(ctx, materialId, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	distributed, err := fetchDistributedRows(ctx, nil, materialId, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return AggregateMaterialWise(added, distributed), nil
}

// ConsistencyIssue is one material where the documents and the ledger disagree.
type ConsistencyIssue struct {
	MaterialId  int             `json:"material_id"`
	DocumentNet decimal.Decimal `json:"document_net"`
	LedgerNet   decimal.Decimal `json:"ledger_net"`
	Difference  decimal.Decimal `json:"difference"`
}

// CheckLedgerDocumentConsistency recomputes each material's net stock two
// independent ways, from documents and from the ledger, and reports every
// material where the two disagree. A clean system returns an empty slice.
func CheckLedgerDocumentConsistency(ctx context.Context) ([]ConsistencyIssue, error) {

	added, err := fetchAddedRows(ctx, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	distributed, err := fetchDistributedRows(ctx, nil, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	documentNet := make(map[int]decimal.Decimal)
	for _, row := range added {
		documentNet[row.MaterialId] = documentNet[row.MaterialId].Add(row.Qty)
	}
	for _, row := range distributed {
		documentNet[row.MaterialId] = documentNet[row.MaterialId].Sub(row.Qty)
	}

	db := config.GetDB()
	type ledgerRow struct {
		MaterialId int
		Net        decimal.Decimal
	}
	var ledgerRows []ledgerRow
	err = db.WithContext(ctx).Raw(`
		SELECT material_id,
		       SUM(CASE WHEN tx_type = 'IN' THEN qty ELSE -qty END) AS net
		FROM stock_transactions
		GROUP BY material_id
	`).Scan(&ledgerRows).Error
	if err != nil {
		return nil, err
	}
	ledgerNet := make(map[int]decimal.Decimal)
	for _, row := range ledgerRows {
		ledgerNet[row.MaterialId] = row.Net
	}

	materialIds := make(map[int]struct{})
	for id := range documentNet {
		materialIds[id] = struct{}{}
	}
	for id := range ledgerNet {
		materialIds[id] = struct{}{}
	}

	var issues []ConsistencyIssue
	for id := range materialIds {
		docNet := documentNet[id]
		ledNet := ledgerNet[id]
		if !docNet.Equal(ledNet) {
			issues = append(issues, ConsistencyIssue{
				MaterialId:  id,
				DocumentNet: docNet,
				LedgerNet:   ledNet,
				Difference:  docNet.Sub(ledNet),
			})
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].MaterialId < issues[j].MaterialId })
	return issues, nil
}
