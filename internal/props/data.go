package props

// Saturation data, rounded reference values.
// Columns: T [°C], ρl, ρv [kg/m³], μl, μv [Pa·s], λl [W/(m·K)], Psat [Pa].

var water = &substance{
	name:  "Water",
	pcrit: 22.064e6,
	rows: []row{
		{t: 10, rhoL: 999.7, rhoV: 0.0094, muL: 1.306e-3, muV: 9.46e-6, lambdaL: 0.580, psat: 1228},
		{t: 20, rhoL: 998.2, rhoV: 0.0173, muL: 1.002e-3, muV: 9.73e-6, lambdaL: 0.598, psat: 2339},
		{t: 50, rhoL: 988.0, rhoV: 0.0831, muL: 0.547e-3, muV: 10.6e-6, lambdaL: 0.644, psat: 12352},
		{t: 100, rhoL: 958.4, rhoV: 0.598, muL: 0.282e-3, muV: 12.3e-6, lambdaL: 0.679, psat: 101418},
		{t: 150, rhoL: 917.0, rhoV: 2.548, muL: 0.183e-3, muV: 13.9e-6, lambdaL: 0.682, psat: 476160},
		{t: 200, rhoL: 864.7, rhoV: 7.864, muL: 0.134e-3, muV: 15.7e-6, lambdaL: 0.665, psat: 1554900},
		{t: 250, rhoL: 799.1, rhoV: 19.98, muL: 0.106e-3, muV: 17.6e-6, lambdaL: 0.618, psat: 3976200},
		{t: 300, rhoL: 712.1, rhoV: 46.21, muL: 0.086e-3, muV: 20.2e-6, lambdaL: 0.545, psat: 8587900},
	},
}

var carbonDioxide = &substance{
	name:  "CO2",
	pcrit: 7.3773e6,
	rows: []row{
		{t: -50, rhoL: 1154.6, rhoV: 17.96, muL: 0.242e-3, muV: 11.0e-6, lambdaL: 0.165, psat: 682300},
		{t: -40, rhoL: 1117.2, rhoV: 26.13, muL: 0.205e-3, muV: 11.5e-6, lambdaL: 0.152, psat: 1004500},
		{t: -30, rhoL: 1076.2, rhoV: 37.11, muL: 0.174e-3, muV: 12.1e-6, lambdaL: 0.139, psat: 1427900},
		{t: -20, rhoL: 1031.7, rhoV: 51.74, muL: 0.148e-3, muV: 12.8e-6, lambdaL: 0.128, psat: 1969700},
		{t: -10, rhoL: 982.9, rhoV: 71.25, muL: 0.125e-3, muV: 13.6e-6, lambdaL: 0.118, psat: 2648600},
		{t: 0, rhoL: 927.4, rhoV: 97.65, muL: 0.1e-3, muV: 14.7e-6, lambdaL: 0.109, psat: 3485100},
		{t: 10, rhoL: 861.1, rhoV: 135.2, muL: 0.086e-3, muV: 16.0e-6, lambdaL: 0.0995, psat: 4502200},
		{t: 20, rhoL: 773.4, rhoV: 194.2, muL: 0.070e-3, muV: 18.1e-6, lambdaL: 0.0865, psat: 5729100},
		{t: 30, rhoL: 593.3, rhoV: 345.1, muL: 0.046e-3, muV: 25.0e-6, lambdaL: 0.0764, psat: 7213700},
	},
}
