// SPDX-License-Identifier: MIT

package matcher

// Built-in league alias maps. Keys are the abbreviations and short names
// seen in release titles; values are the canonical team names used by
// metadata episode titles. Sports can extend or override these through
// team_aliases in their configuration.
var builtinTeamAliasMaps = map[string]map[string]string{
	"nba": {
		"atl": "Atlanta Hawks", "hawks": "Atlanta Hawks",
		"bos": "Boston Celtics", "celtics": "Boston Celtics",
		"bkn": "Brooklyn Nets", "nets": "Brooklyn Nets",
		"cha": "Charlotte Hornets", "hornets": "Charlotte Hornets",
		"chi": "Chicago Bulls", "bulls": "Chicago Bulls",
		"cle": "Cleveland Cavaliers", "cavaliers": "Cleveland Cavaliers", "cavs": "Cleveland Cavaliers",
		"dal": "Dallas Mavericks", "mavericks": "Dallas Mavericks", "mavs": "Dallas Mavericks",
		"den": "Denver Nuggets", "nuggets": "Denver Nuggets",
		"det": "Detroit Pistons", "pistons": "Detroit Pistons",
		"gsw": "Golden State Warriors", "warriors": "Golden State Warriors",
		"hou": "Houston Rockets", "rockets": "Houston Rockets",
		"ind": "Indiana Pacers", "pacers": "Indiana Pacers",
		"lac": "LA Clippers", "clippers": "LA Clippers",
		"lal": "Los Angeles Lakers", "lakers": "Los Angeles Lakers",
		"mem": "Memphis Grizzlies", "grizzlies": "Memphis Grizzlies",
		"mia": "Miami Heat", "heat": "Miami Heat",
		"mil": "Milwaukee Bucks", "bucks": "Milwaukee Bucks",
		"min": "Minnesota Timberwolves", "timberwolves": "Minnesota Timberwolves", "wolves": "Minnesota Timberwolves",
		"nop": "New Orleans Pelicans", "pelicans": "New Orleans Pelicans",
		"nyk": "New York Knicks", "knicks": "New York Knicks",
		"okc": "Oklahoma City Thunder", "thunder": "Oklahoma City Thunder",
		"orl": "Orlando Magic", "magic": "Orlando Magic",
		"phi": "Philadelphia 76ers", "76ers": "Philadelphia 76ers", "sixers": "Philadelphia 76ers",
		"phx": "Phoenix Suns", "suns": "Phoenix Suns",
		"por": "Portland Trail Blazers", "blazers": "Portland Trail Blazers",
		"sac": "Sacramento Kings",
		"sas": "San Antonio Spurs", "spurs": "San Antonio Spurs",
		"tor": "Toronto Raptors", "raptors": "Toronto Raptors",
		"uta": "Utah Jazz", "jazz": "Utah Jazz",
		"was": "Washington Wizards", "wizards": "Washington Wizards",
	},
	"nhl": {
		"ana": "Anaheim Ducks", "ducks": "Anaheim Ducks",
		"bos": "Boston Bruins", "bruins": "Boston Bruins",
		"buf": "Buffalo Sabres", "sabres": "Buffalo Sabres",
		"cgy": "Calgary Flames", "flames": "Calgary Flames",
		"car": "Carolina Hurricanes", "hurricanes": "Carolina Hurricanes", "canes": "Carolina Hurricanes",
		"chi": "Chicago Blackhawks", "blackhawks": "Chicago Blackhawks",
		"col": "Colorado Avalanche", "avalanche": "Colorado Avalanche", "avs": "Colorado Avalanche",
		"cbj": "Columbus Blue Jackets", "bluejackets": "Columbus Blue Jackets",
		"dal": "Dallas Stars", "stars": "Dallas Stars",
		"det": "Detroit Red Wings", "redwings": "Detroit Red Wings",
		"edm": "Edmonton Oilers", "oilers": "Edmonton Oilers",
		"fla": "Florida Panthers", "panthers": "Florida Panthers",
		"lak": "Los Angeles Kings",
		"min": "Minnesota Wild", "wild": "Minnesota Wild",
		"mtl": "Montreal Canadiens", "canadiens": "Montreal Canadiens", "habs": "Montreal Canadiens",
		"nsh": "Nashville Predators", "predators": "Nashville Predators", "preds": "Nashville Predators",
		"njd": "New Jersey Devils", "devils": "New Jersey Devils",
		"nyi": "New York Islanders", "islanders": "New York Islanders",
		"nyr": "New York Rangers", "rangers": "New York Rangers",
		"ott": "Ottawa Senators", "senators": "Ottawa Senators", "sens": "Ottawa Senators",
		"phi": "Philadelphia Flyers", "flyers": "Philadelphia Flyers",
		"pit": "Pittsburgh Penguins", "penguins": "Pittsburgh Penguins", "pens": "Pittsburgh Penguins",
		"sjs": "San Jose Sharks", "sharks": "San Jose Sharks",
		"sea": "Seattle Kraken", "kraken": "Seattle Kraken",
		"stl": "St. Louis Blues", "blues": "St. Louis Blues",
		"tbl": "Tampa Bay Lightning", "lightning": "Tampa Bay Lightning", "bolts": "Tampa Bay Lightning",
		"tor": "Toronto Maple Leafs", "mapleleafs": "Toronto Maple Leafs", "leafs": "Toronto Maple Leafs",
		"uta": "Utah Mammoth",
		"van": "Vancouver Canucks", "canucks": "Vancouver Canucks",
		"vgk": "Vegas Golden Knights", "goldenknights": "Vegas Golden Knights",
		"wsh": "Washington Capitals", "capitals": "Washington Capitals", "caps": "Washington Capitals",
		"wpg": "Winnipeg Jets", "jets": "Winnipeg Jets",
	},
	"nfl": {
		"ari": "Arizona Cardinals", "cardinals": "Arizona Cardinals",
		"atl": "Atlanta Falcons", "falcons": "Atlanta Falcons",
		"bal": "Baltimore Ravens", "ravens": "Baltimore Ravens",
		"buf": "Buffalo Bills", "bills": "Buffalo Bills",
		"car": "Carolina Panthers",
		"chi": "Chicago Bears", "bears": "Chicago Bears",
		"cin": "Cincinnati Bengals", "bengals": "Cincinnati Bengals",
		"cle": "Cleveland Browns", "browns": "Cleveland Browns",
		"dal": "Dallas Cowboys", "cowboys": "Dallas Cowboys",
		"den": "Denver Broncos", "broncos": "Denver Broncos",
		"det": "Detroit Lions", "lions": "Detroit Lions",
		"gb": "Green Bay Packers", "packers": "Green Bay Packers",
		"hou": "Houston Texans", "texans": "Houston Texans",
		"ind": "Indianapolis Colts", "colts": "Indianapolis Colts",
		"jax": "Jacksonville Jaguars", "jaguars": "Jacksonville Jaguars",
		"kc": "Kansas City Chiefs", "chiefs": "Kansas City Chiefs",
		"lv": "Las Vegas Raiders", "raiders": "Las Vegas Raiders",
		"lac": "Los Angeles Chargers", "chargers": "Los Angeles Chargers",
		"lar": "Los Angeles Rams", "rams": "Los Angeles Rams",
		"mia": "Miami Dolphins", "dolphins": "Miami Dolphins",
		"min": "Minnesota Vikings", "vikings": "Minnesota Vikings",
		"ne": "New England Patriots", "patriots": "New England Patriots", "pats": "New England Patriots",
		"no": "New Orleans Saints", "saints": "New Orleans Saints",
		"nyg": "New York Giants", "giants": "New York Giants",
		"nyj": "New York Jets",
		"phi": "Philadelphia Eagles", "eagles": "Philadelphia Eagles",
		"pit": "Pittsburgh Steelers", "steelers": "Pittsburgh Steelers",
		"sf": "San Francisco 49ers", "49ers": "San Francisco 49ers", "niners": "San Francisco 49ers",
		"sea": "Seattle Seahawks", "seahawks": "Seattle Seahawks",
		"tb": "Tampa Bay Buccaneers", "buccaneers": "Tampa Bay Buccaneers", "bucs": "Tampa Bay Buccaneers",
		"ten": "Tennessee Titans", "titans": "Tennessee Titans",
		"wsh": "Washington Commanders", "commanders": "Washington Commanders",
	},
}
