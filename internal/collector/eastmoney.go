package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/calendar"
	"github.com/allenshen-svg/fund-assistant/internal/model"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Default EastMoney endpoints.
const (
	DefaultMobileAPIURL = "https://fundmobapi.eastmoney.com/FundMNewApi/FundMNHisNetList"
	DefaultKLineURL     = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
	DefaultEstimateURL  = "https://fundgz.1234567.com.cn/js"
	DefaultSectorURL    = "https://push2.eastmoney.com/api/qt/clist/get"
)

const (
	userAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	referer    = "https://fund.eastmoney.com/"
	maxRetries = 3
	retryDelay = 500 * time.Millisecond
)

// ErrNoData is returned when an endpoint answers but carries no usable rows.
var ErrNoData = errors.New("no data")

// Endpoints holds the EastMoney URLs, overridable for tests.
type Endpoints struct {
	MobileAPI string
	KLine     string
	Estimate  string
	Sector    string
}

// DefaultEndpoints returns the public EastMoney endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		MobileAPI: DefaultMobileAPIURL,
		KLine:     DefaultKLineURL,
		Estimate:  DefaultEstimateURL,
		Sector:    DefaultSectorURL,
	}
}

// EastMoneyFetcher implements Fetcher using the EastMoney fund and quote APIs.
type EastMoneyFetcher struct {
	Client    *http.Client
	Endpoints Endpoints
	Logger    *zap.Logger
	Location  *time.Location
}

// NewEastMoneyFetcher creates a new fetcher with optional proxy support.
func NewEastMoneyFetcher(proxyURL string, logger *zap.Logger) *EastMoneyFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EastMoneyFetcher{
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		Endpoints: DefaultEndpoints(),
		Logger:    logger,
		Location:  calendar.ShanghaiLocation(),
	}
}

func (f *EastMoneyFetcher) Name() string { return "eastmoney" }

// FetchNAVHistory tries the mobile fund API first and falls back to the kline API,
// which also covers exchange-listed funds.
func (f *EastMoneyFetcher) FetchNAVHistory(ctx context.Context, code string, days int) ([]model.PricePoint, error) {
	points, err := f.fetchMobileHistory(ctx, code, days)
	if err == nil && len(points) > 0 {
		return points, nil
	}
	f.Logger.Debug("mobile nav history unavailable, trying kline", zap.String("code", code), zap.Error(err))

	points, klineErr := f.fetchKLineHistory(ctx, code, days)
	if klineErr != nil {
		return nil, fmt.Errorf("nav history %s: mobile: %v; kline: %w", code, err, klineErr)
	}
	return points, nil
}

func (f *EastMoneyFetcher) fetchMobileHistory(ctx context.Context, code string, days int) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("pageIndex", "1")
	q.Set("pageSize", fmt.Sprint(days))
	q.Set("plat", "Android")
	q.Set("appType", "ttjj")
	q.Set("product", "EFund")
	q.Set("Version", "1")
	q.Set("deviceid", "1")
	q.Set("FCODE", code)
	body, err := f.get(ctx, f.Endpoints.MobileAPI+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return f.parseMobileHistory(body)
}

// parseMobileHistory reads Datas[].FSRQ/DWJZ, which arrive newest first.
func (f *EastMoneyFetcher) parseMobileHistory(body []byte) ([]model.PricePoint, error) {
	datas := gjson.GetBytes(body, "Datas")
	if !datas.IsArray() {
		return nil, ErrNoData
	}
	var points []model.PricePoint
	for _, d := range datas.Array() {
		nav := d.Get("DWJZ")
		if strings.TrimSpace(nav.String()) == "" {
			continue
		}
		date, err := time.ParseInLocation(model.DateLayout, d.Get("FSRQ").String(), f.Location)
		if err != nil {
			continue
		}
		v := nav.Float()
		if v <= 0 {
			continue
		}
		points = append(points, model.PricePoint{Date: date, NAV: v})
	}
	if len(points) == 0 {
		return nil, ErrNoData
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// SecID maps a fund code to its kline security id: codes starting with 5 or 6
// trade in Shanghai (1.), everything else in Shenzhen (0.).
func SecID(code string) string {
	if strings.HasPrefix(code, "5") || strings.HasPrefix(code, "6") {
		return "1." + code
	}
	return "0." + code
}

func (f *EastMoneyFetcher) fetchKLineHistory(ctx context.Context, code string, days int) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("secid", SecID(code))
	q.Set("fields1", "f1,f2,f3")
	q.Set("fields2", "f51,f52,f53")
	q.Set("klt", "101")
	q.Set("fqt", "1")
	q.Set("beg", "0")
	q.Set("end", "20500101")
	q.Set("lmt", fmt.Sprint(days))
	body, err := f.get(ctx, f.Endpoints.KLine+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return f.parseKLines(body)
}

// parseKLines reads "date,open,close" rows and keeps the close.
func (f *EastMoneyFetcher) parseKLines(body []byte) ([]model.PricePoint, error) {
	klines := gjson.GetBytes(body, "data.klines")
	if !klines.IsArray() {
		return nil, ErrNoData
	}
	var points []model.PricePoint
	for _, k := range klines.Array() {
		parts := strings.Split(strings.TrimSpace(k.String()), ",")
		if len(parts) < 2 {
			continue
		}
		date, err := time.ParseInLocation(model.DateLayout, parts[0], f.Location)
		if err != nil {
			continue
		}
		raw := parts[1]
		if len(parts) >= 3 {
			raw = parts[2]
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			continue
		}
		points = append(points, model.PricePoint{Date: date, NAV: v})
	}
	if len(points) == 0 {
		return nil, ErrNoData
	}
	return points, nil
}

// FetchEstimate reads the intraday estimate from the fundgz jsonp endpoint.
func (f *EastMoneyFetcher) FetchEstimate(ctx context.Context, code string) (*model.Estimate, error) {
	endpoint := fmt.Sprintf("%s/%s.js?rt=%d", f.Endpoints.Estimate, code, time.Now().UnixMilli())
	body, err := f.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("estimate %s: %w", code, err)
	}
	est, err := f.parseEstimate(body)
	if err != nil {
		return nil, fmt.Errorf("estimate %s: %w", code, err)
	}
	return est, nil
}

// parseEstimate unwraps jsonpgz({...}); and reads fundcode/name/dwjz/gsz/gszzl/gztime.
func (f *EastMoneyFetcher) parseEstimate(body []byte) (*model.Estimate, error) {
	s := string(body)
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, ErrNoData
	}
	obj := gjson.Parse(s[start : end+1])
	if !obj.Get("fundcode").Exists() {
		return nil, ErrNoData
	}
	est := &model.Estimate{
		Code:     obj.Get("fundcode").String(),
		Name:     obj.Get("name").String(),
		NAV:      obj.Get("dwjz").Float(),
		Estimate: obj.Get("gsz").Float(),
		Pct:      obj.Get("gszzl").Float(),
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", obj.Get("gztime").String(), f.Location); err == nil {
		est.Time = t
	}
	return est, nil
}

// FetchSectorFlows returns the top industry boards by main-force net inflow.
func (f *EastMoneyFetcher) FetchSectorFlows(ctx context.Context) ([]model.SectorFlow, error) {
	q := url.Values{}
	q.Set("pn", "1")
	q.Set("pz", "20")
	q.Set("po", "1")
	q.Set("np", "1")
	q.Set("fltt", "2")
	q.Set("invt", "2")
	q.Set("fid", "f62")
	q.Set("fs", "m:90 t:2")
	q.Set("fields", "f12,f14,f2,f3,f62,f184")
	body, err := f.get(ctx, f.Endpoints.Sector+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("sector flows: %w", err)
	}
	return parseSectorFlows(body)
}

// parseSectorFlows reads data.diff[] f12 code, f14 name, f3 pct, f62 main net, f184 main pct.
func parseSectorFlows(body []byte) ([]model.SectorFlow, error) {
	diff := gjson.GetBytes(body, "data.diff")
	if !diff.Exists() {
		return nil, ErrNoData
	}
	var flows []model.SectorFlow
	diff.ForEach(func(_, v gjson.Result) bool {
		name := strings.TrimSpace(v.Get("f14").String())
		if name == "" {
			return true
		}
		net, err := decimal.NewFromString(v.Get("f62").String())
		if err != nil {
			net = decimal.Zero
		}
		flows = append(flows, model.SectorFlow{
			Code:    v.Get("f12").String(),
			Name:    name,
			Pct:     v.Get("f3").Float(),
			MainNet: net,
			MainPct: v.Get("f184").Float(),
		})
		return true
	})
	return flows, nil
}

func (f *EastMoneyFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}
		body, retry, err := f.do(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, lastErr
}

// do performs one request. retry reports whether the failure is transient.
func (f *EastMoneyFetcher) do(ctx context.Context, endpoint string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	if resp.StatusCode != http.StatusOK {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, fmt.Errorf("http %d", resp.StatusCode)
	}
	return body, false, nil
}
