package templates

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
)

func pageHead(title string) string {
	return `<!doctype html><html lang="en"><head><meta charset="UTF-8">` +
		`<meta name="viewport" content="width=device-width, initial-scale=1.0">` +
		`<title>` + templ.EscapeString(title) + `</title>` +
		`<script src="https://cdn.tailwindcss.com"></script>` +
		`<script src="https://cdn.jsdelivr.net/npm/chart.js@4"></script>` +
		`</head><body class="bg-stone-100 font-sans text-stone-800">`
}

func navBar() string {
	return `<nav class="bg-white shadow mb-6"><div class="max-w-6xl mx-auto px-4 py-3 flex items-center justify-between">` +
		`<span class="text-xl font-black">APR Cycling Club</span>` +
		`<div class="space-x-4"><a class="font-semibold hover:underline" href="/">Dashboard</a>` +
		`<a class="font-semibold hover:underline" href="/results">Results</a></div></div></nav>`
}

// Home renders the dashboard shell: upload form, KPI cards with
// server-computed initial values, and Chart.js bindings fed by the JSON API.
func Home(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(pageHead("APR Cycling Club - Performance Dashboard"))
		buf.WriteString(navBar())
		buf.WriteString(`<div class="max-w-6xl mx-auto px-4 pb-12">`)

		buf.WriteString(`<h1 class="text-3xl font-black mb-1">Performance Dashboard</h1>`)
		buf.WriteString(fmt.Sprintf(
			`<p class="text-sm text-stone-500 mb-6">%s records loaded (%s data)</p>`,
			humanize.Comma(int64(data.RecordCount)), templ.EscapeString(data.Source)))

		// Upload card
		buf.WriteString(`<div class="bg-white rounded-2xl p-5 shadow mb-6">` +
			`<h2 class="text-lg font-bold mb-2">Upload Ride Log</h2>` +
			`<form id="upload-form" class="flex items-center gap-3">` +
			`<input type="file" id="upload-file" name="file" accept=".csv,.xlsx,.xls" class="block text-sm"/>` +
			`<button type="submit" class="bg-stone-800 text-white font-bold py-2 px-5 rounded-xl">Upload</button>` +
			`</form><p id="upload-message" class="text-sm mt-2"></p></div>`)

		// KPI cards
		kpis := []struct {
			label string
			value string
		}{
			{"Total Distance (km)", humanize.CommafWithDigits(data.Stats.TotalDistance, 1)},
			{"Total Duration (h)", humanize.CommafWithDigits(data.Stats.TotalDuration, 1)},
			{"Avg Power (W)", humanize.CommafWithDigits(data.Stats.AvgPower, 0)},
			{"Avg HR (bpm)", humanize.CommafWithDigits(data.Stats.AvgHeartRate, 0)},
			{"Elev Gain (m)", humanize.CommafWithDigits(data.Stats.TotalElevation, 0)},
		}
		buf.WriteString(`<div id="kpis" class="grid grid-cols-2 md:grid-cols-5 gap-4 mb-6">`)
		for i, k := range kpis {
			buf.WriteString(fmt.Sprintf(
				`<div class="bg-white rounded-2xl p-4 shadow"><div class="text-xs text-stone-500">%s</div>`+
					`<div class="text-2xl font-extrabold" data-kpi="%d">%s</div></div>`,
				templ.EscapeString(k.label), i, k.value))
		}
		buf.WriteString(`</div>`)

		// Period selector + charts
		buf.WriteString(`<div class="flex items-center gap-3 mb-4">` +
			`<label class="text-sm font-semibold">Time Resolution</label>` +
			`<select id="period" class="p-2 border rounded-md bg-white">` +
			`<option value="hour">Hour</option><option value="day">Day</option>` +
			`<option value="week">Week</option><option value="month" selected>Month</option>` +
			`<option value="quarter">Quarter</option><option value="year">Year</option>` +
			`</select></div>`)
		buf.WriteString(`<div class="grid md:grid-cols-2 gap-6 mb-6">` +
			`<div class="bg-white rounded-2xl p-4 shadow"><h2 class="font-bold mb-2">Distance</h2><canvas id="distance-chart"></canvas></div>` +
			`<div class="bg-white rounded-2xl p-4 shadow"><h2 class="font-bold mb-2">Average Power</h2><canvas id="power-chart"></canvas></div>` +
			`<div class="bg-white rounded-2xl p-4 shadow"><h2 class="font-bold mb-2">Team Power</h2><canvas id="team-chart"></canvas></div>` +
			`<div class="bg-white rounded-2xl p-4 shadow"><h2 class="font-bold mb-2">Leaderboard</h2><div id="leaderboard" class="text-sm"></div></div>` +
			`</div>`)

		// Riders + news
		buf.WriteString(`<div class="grid md:grid-cols-2 gap-6">` +
			`<div class="bg-white rounded-2xl p-4 shadow"><h2 class="font-bold mb-2">Riders</h2><div id="riders" class="text-sm overflow-x-auto"></div></div>` +
			`<div class="bg-white rounded-2xl p-4 shadow"><h2 class="font-bold mb-2">Club News</h2><div id="news" class="text-sm space-y-3"></div></div>` +
			`</div>`)

		buf.WriteString(`<script>` + homeScript + `</script>`)
		buf.WriteString(`</div></body></html>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Results renders the static race-results page.
func Results(results []RaceResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(pageHead("APR Cycling Club - Race Results"))
		buf.WriteString(navBar())
		buf.WriteString(`<div class="max-w-4xl mx-auto px-4 pb-12">`)
		buf.WriteString(`<h1 class="text-3xl font-black mb-6">Race Results</h1>`)

		for _, r := range results {
			buf.WriteString(`<div class="bg-white rounded-2xl p-5 shadow mb-4">`)
			buf.WriteString(fmt.Sprintf(
				`<div class="flex justify-between items-baseline"><h2 class="text-lg font-bold">%s</h2>`+
					`<span class="text-sm text-stone-500">%s &middot; %s</span></div>`,
				templ.EscapeString(r.Race), templ.EscapeString(r.Date), templ.EscapeString(r.Location)))
			buf.WriteString(`<ol class="mt-2 text-sm list-decimal list-inside">`)
			for _, name := range r.Podium {
				buf.WriteString(`<li>` + templ.EscapeString(name) + `</li>`)
			}
			buf.WriteString(`</ol>`)
			if r.Note != "" {
				buf.WriteString(`<p class="text-sm text-stone-500 mt-2">` + templ.EscapeString(r.Note) + `</p>`)
			}
			buf.WriteString(`</div>`)
		}

		buf.WriteString(`</div></body></html>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

const homeScript = `
let distanceChart, powerChart, teamChart;

function lineChart(ctx, labels, data, label) {
	return new Chart(ctx, {type: 'line', data: {labels: labels, datasets: [{label: label, data: data, borderColor: '#44403c', tension: 0.3}]}, options: {plugins: {legend: {display: false}}}});
}
function barChart(ctx, labels, data, label) {
	return new Chart(ctx, {type: 'bar', data: {labels: labels, datasets: [{label: label, data: data, backgroundColor: '#78716c'}]}, options: {plugins: {legend: {display: false}}}});
}

async function refreshCharts() {
	const period = document.getElementById('period').value;
	const resp = await fetch('/api/data/' + period);
	if (!resp.ok) return;
	const d = await resp.json();
	if (distanceChart) distanceChart.destroy();
	if (powerChart) powerChart.destroy();
	if (teamChart) teamChart.destroy();
	distanceChart = lineChart(document.getElementById('distance-chart'), d.labels, d.distance, 'Distance (km)');
	powerChart = barChart(document.getElementById('power-chart'), d.labels, d.power, 'Avg Power (W)');
	teamChart = barChart(document.getElementById('team-chart'), d.teams, d.teamPower, 'Avg Power (W)');
	refreshLeaderboard(period);
}

async function refreshStats() {
	const resp = await fetch('/api/stats');
	if (!resp.ok) return;
	const s = await resp.json();
	const vals = [s.totalDistance.toFixed(1), s.totalDuration.toFixed(1), s.avgPower.toFixed(0), s.avgHeartRate.toFixed(0), s.totalElevation.toFixed(0)];
	document.querySelectorAll('[data-kpi]').forEach((el, i) => { el.innerText = Number(vals[i]).toLocaleString(); });
}

async function refreshRiders() {
	const resp = await fetch('/api/riders');
	if (!resp.ok) return;
	const riders = await resp.json();
	let html = '<table class="w-full"><tr class="text-left border-b"><th>Rider</th><th>Team</th><th>km</th><th>W</th><th>bpm</th></tr>';
	for (const r of riders) {
		html += '<tr class="border-b"><td>' + r.name + '</td><td>' + r.team + '</td><td>' + r.distance.toFixed(1) + '</td><td>' + r.power.toFixed(0) + '</td><td>' + r.hr.toFixed(0) + '</td></tr>';
	}
	document.getElementById('riders').innerHTML = html + '</table>';
}

async function refreshLeaderboard(period) {
	const resp = await fetch('/api/leaderboard/' + period);
	if (!resp.ok) return;
	const lb = await resp.json();
	let html = '<div class="font-semibold mb-1">Top Riders</div><ol class="list-decimal list-inside mb-3">';
	for (const r of lb.riders) html += '<li>' + r.name + ' - ' + r.distance.toFixed(1) + ' km</li>';
	html += '</ol><div class="font-semibold mb-1">Top Teams</div><ol class="list-decimal list-inside">';
	for (const t of lb.teams) html += '<li>' + t.name + ' - ' + t.distance.toFixed(1) + ' km</li>';
	document.getElementById('leaderboard').innerHTML = html + '</ol>';
}

async function refreshNews() {
	const resp = await fetch('/api/news');
	if (!resp.ok) return;
	const items = await resp.json();
	let html = '';
	for (const n of items) {
		html += '<div><div class="flex justify-between"><span class="font-semibold">' + n.title + '</span><span class="text-xs text-stone-500">' + n.date + '</span></div><p class="text-stone-600">' + n.excerpt + '</p></div>';
	}
	document.getElementById('news').innerHTML = html;
}

document.getElementById('upload-form').addEventListener('submit', async (ev) => {
	ev.preventDefault();
	const input = document.getElementById('upload-file');
	const msg = document.getElementById('upload-message');
	if (!input.files.length) { msg.innerText = 'No file selected'; return; }
	const form = new FormData();
	form.append('file', input.files[0]);
	const resp = await fetch('/upload', {method: 'POST', body: form});
	const body = await resp.json();
	if (!resp.ok) { msg.innerText = body.error || 'Upload failed'; return; }
	msg.innerText = body.message;
	refreshStats(); refreshRiders(); refreshCharts();
});

document.getElementById('period').addEventListener('change', refreshCharts);
refreshStats(); refreshRiders(); refreshCharts(); refreshNews();
`
